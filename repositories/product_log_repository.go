package repositories

import (
	"context"

	"catalog/models"

	"gorm.io/gorm"
)

type ProductLogStore interface {
	Create(ctx context.Context, l *models.ProductLog) error
	ListByProduct(ctx context.Context, productID string, limit int) ([]models.ProductLog, error)
}

type ProductLogRepository struct {
	db *gorm.DB
}

func NewProductLogRepository(db *gorm.DB) *ProductLogRepository {
	return &ProductLogRepository{db: db}
}

func (r *ProductLogRepository) Create(ctx context.Context, l *models.ProductLog) error {
	return wrapErr(r.db.WithContext(ctx).Create(l).Error)
}

func (r *ProductLogRepository) ListByProduct(ctx context.Context, productID string, limit int) ([]models.ProductLog, error) {
	var list []models.ProductLog
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, wrapErr(err)
}

// AnalyticRepository giữ số liệu tháng của sản phẩm
type AnalyticRepository struct {
	db *gorm.DB
}

func NewAnalyticRepository(db *gorm.DB) *AnalyticRepository {
	return &AnalyticRepository{db: db}
}

// EnsurePeriod tạo dòng số liệu (product, year, month) nếu chưa có
func (r *AnalyticRepository) EnsurePeriod(ctx context.Context, productID string, year, month int) (*models.ProductAnalytic, error) {
	a := models.ProductAnalytic{}
	err := r.db.WithContext(ctx).
		Where(models.ProductAnalytic{ProductID: productID, Year: year, Month: month}).
		FirstOrCreate(&a).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return &a, nil
}

func (r *AnalyticRepository) Find(ctx context.Context, productID string, year, month int) (*models.ProductAnalytic, error) {
	var a models.ProductAnalytic
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND year = ? AND month = ?", productID, year, month).First(&a).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &a, nil
}
