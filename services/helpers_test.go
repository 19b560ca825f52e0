package services

import (
	"testing"

	"catalog/config"
	apperrors "catalog/errors"
	"catalog/services/logger"

	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenSQLite("file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func nopLogger() logger.Logger {
	return logger.NewNopLogger()
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	if !apperrors.IsCode(err, code) {
		t.Fatalf("expected error %s, got %v", code, err)
	}
}
