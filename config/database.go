package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"catalog/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// getDSNByEnv đọc thông tin kết nối theo tiền tố môi trường (DEV_, QC_, PROD_)
func getDSNByEnv(env string) (string, error) {
	prefix := strings.ToUpper(env)
	switch env {
	case "dev", "qc", "prod":
	default:
		return "", fmt.Errorf("unknown environment: %s", env)
	}

	sslmode := "require"
	if env == "dev" {
		sslmode = "disable"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=Asia/Ho_Chi_Minh",
		os.Getenv(prefix+"_DB_HOST"),
		os.Getenv(prefix+"_DB_USER"),
		os.Getenv(prefix+"_DB_PASSWORD"),
		os.Getenv(prefix+"_DB_NAME"),
		os.Getenv(prefix+"_DB_PORT"),
		sslmode,
	)
	return dsn, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// ConnectDB mở kết nối theo DB_DRIVER rồi AutoMigrate các bảng
func ConnectDB(cfg AppConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case "sqlite":
		db, err = OpenSQLite(cfg.DBPath)
	default:
		dsn, dsnErr := getDSNByEnv(cfg.Env)
		if dsnErr != nil {
			return nil, dsnErr
		}
		db, err = gorm.Open(postgres.Open(dsn), gormConfig())
	}
	if err != nil {
		return nil, fmt.Errorf("fail to connect to db: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Println("Successfully connected to db")
	return db, nil
}

// OpenSQLite dùng cho môi trường local và test
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite in-memory: một connection để mọi truy vấn thấy cùng một DB
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
