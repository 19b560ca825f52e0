package repositories

import (
	"errors"

	apperrors "catalog/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// wrapErr bọc mọi lỗi của gorm thành lỗi backend đồng nhất
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Backend(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// forUpdate khóa dòng khi đọc trong transaction (sqlite bỏ qua mệnh đề này)
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
