package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"catalog/dto"
	"catalog/models"
	"catalog/services/logger"

	"github.com/segmentio/kafka-go"
)

type AnalyticsStore interface {
	EnsurePeriod(ctx context.Context, productID string, year, month int) (*models.ProductAnalytic, error)
}

// ProductCreatedConsumer tạo sẵn dòng analytics của tháng cho sản phẩm vừa tạo
type ProductCreatedConsumer struct {
	r         *kafka.Reader
	analytics AnalyticsStore
	logger    logger.Logger
	now       func() time.Time
}

func NewProductCreatedConsumer(brokers []string, topic, groupID string, analytics AnalyticsStore, log logger.Logger) *ProductCreatedConsumer {
	return &ProductCreatedConsumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
		analytics: analytics,
		logger:    log,
		now:       time.Now,
	}
}

func (c *ProductCreatedConsumer) Close() error { return c.r.Close() }

// Run đọc tới khi ctx bị hủy; message lỗi chỉ được log rồi bỏ qua
func (c *ProductCreatedConsumer) Run(ctx context.Context) {
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				c.logger.Error("read product_created: %v", err)
			}
			return
		}
		if err := c.Handle(ctx, m.Value); err != nil {
			c.logger.Error("handle product_created at offset %d: %v", m.Offset, err)
		}
	}
}

// Handle idempotent: chạy lại cùng một sự kiện không tạo thêm dòng
func (c *ProductCreatedConsumer) Handle(ctx context.Context, value []byte) error {
	var ev dto.ProductCreatedEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return err
	}
	if ev.ProductID == "" {
		return errors.New("product_created event without product_id")
	}
	at := ev.CreatedAt
	if at.IsZero() {
		at = c.now()
	}
	_, err := c.analytics.EnsurePeriod(ctx, ev.ProductID, at.Year(), int(at.Month()))
	return err
}
