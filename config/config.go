package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig gom toàn bộ cấu hình runtime, đọc từ biến môi trường
type AppConfig struct {
	Env      string
	Port     string
	LogLevel string

	DBDriver string
	DBPath   string

	RedisAddr     string
	RedisUser     string
	RedisPassword string
	RedisDB       int

	ElasticAddresses []string
	ElasticAPIKey    string
	ElasticIndex     string

	RabbitMQURL string
	RPCTimeout  time.Duration

	KafkaBrokers      []string
	NotificationTopic string
	ProductTopic      string
	KafkaGroupID      string

	CloudinaryURL    string
	CloudinaryFolder string

	JWTSecret   string
	CorsOrigins []string

	StatusRefreshSpec string
	ReindexSpec       string
}

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

// Load đọc và kiểm tra cấu hình, thiếu thì dùng giá trị mặc định
func Load() (AppConfig, error) {
	cfg := AppConfig{
		Env:               getEnv("ENV", "dev"),
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DBDriver:          getEnv("DB_DRIVER", "postgres"),
		DBPath:            getEnv("DB_PATH", "catalog.db"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisUser:         getEnv("REDIS_USER", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		ElasticAddresses:  splitCSV(getEnv("ELASTIC_ADDRESSES", "")),
		ElasticAPIKey:     getEnv("ELASTIC_API_KEY", ""),
		ElasticIndex:      getEnv("ELASTIC_INDEX", "products"),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		KafkaBrokers:      splitCSV(getEnv("KAFKA_BROKERS", "")),
		NotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "create_new_notification"),
		ProductTopic:      getEnv("KAFKA_PRODUCT_TOPIC", "product_created"),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "catalog-service"),
		CloudinaryURL:     getEnv("CLOUDINARY_URL", ""),
		CloudinaryFolder:  getEnv("CLOUDINARY_FOLDER", "catalog"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		CorsOrigins:       splitCSV(getEnv("WHITE_LIST", "")),
		StatusRefreshSpec: getEnv("STATUS_REFRESH_SPEC", "@every 1m"),
		ReindexSpec:       getEnv("REINDEX_SPEC", "0 0 * * *"),
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	timeoutSec, err := getEnvInt("RPC_TIMEOUT_SEC", 5)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid RPC_TIMEOUT_SEC: %w", err)
	}
	if timeoutSec <= 0 {
		return AppConfig{}, fmt.Errorf("RPC_TIMEOUT_SEC must be > 0")
	}
	cfg.RPCTimeout = time.Duration(timeoutSec) * time.Second

	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return AppConfig{}, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.DBDriver)
	}
	if cfg.Env == "prod" && cfg.JWTSecret == "" {
		return AppConfig{}, fmt.Errorf("JWT_SECRET must not be empty in prod")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
