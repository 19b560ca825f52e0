package services

import (
	"context"
	"encoding/json"
	"time"

	"catalog/services/logger"

	"github.com/redis/go-redis/v9"
)

// Cache bọc redis client; client nil thì mọi thao tác đều là no-op
type Cache struct {
	rdb    *redis.Client
	logger logger.Logger
}

func NewCache(rdb *redis.Client, log logger.Logger) *Cache {
	return &Cache{rdb: rdb, logger: log}
}

// Get trả về false khi không có key hoặc cache tắt
func (c *Cache) Get(ctx context.Context, key string, target interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	cached, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.Error("cache get %s: %v", key, err)
		return false
	}
	if err := json.Unmarshal([]byte(cached), target); err != nil {
		c.logger.Error("cache decode %s: %v", key, err)
		return false
	}
	return true
}

// Hàm lưu dữ liệu vào Redis
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("cache encode %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Error("cache set %s: %v", key, err)
	}
}

// Hàm xóa cache Redis
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("cache delete %v: %v", keys, err)
	}
}

// DeletePattern xóa mọi key khớp pattern bằng SCAN
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	if c == nil || c.rdb == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Error("cache scan %s: %v", pattern, err)
		return
	}
	c.Delete(ctx, keys...)
}
