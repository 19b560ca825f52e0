package repositories

import (
	"context"
	"errors"

	apperrors "catalog/errors"
	"catalog/models"

	"gorm.io/gorm"
)

type VariantStore interface {
	Create(ctx context.Context, v *models.Variant) error
	CreateBatch(ctx context.Context, list []models.Variant) error
	FindBySKU(ctx context.Context, sku string) (*models.Variant, error)
	ListByCategory(ctx context.Context, categoryID string) ([]models.Variant, error)
	ListByGroup(ctx context.Context, group string) ([]models.Variant, error)
	UpdateBySKU(ctx context.Context, sku string, patch *models.Variant, columns ...string) (int64, error)
	DeleteGroup(ctx context.Context, group string) (int64, error)
	DeleteBySKU(ctx context.Context, sku string) (int64, error)
}

type VariantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) *VariantRepository {
	return &VariantRepository{db: db}
}

func (r *VariantRepository) Create(ctx context.Context, v *models.Variant) error {
	return r.translate(r.db.WithContext(ctx).Create(v).Error)
}

func (r *VariantRepository) CreateBatch(ctx context.Context, list []models.Variant) error {
	if len(list) == 0 {
		return nil
	}
	return r.translate(r.db.WithContext(ctx).Create(&list).Error)
}

func (r *VariantRepository) FindBySKU(ctx context.Context, sku string) (*models.Variant, error) {
	var v models.Variant
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&v).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &v, nil
}

// ListByCategory tìm theo id danh mục trong cột categories (JSON text)
func (r *VariantRepository) ListByCategory(ctx context.Context, categoryID string) ([]models.Variant, error) {
	var list []models.Variant
	err := r.db.WithContext(ctx).Where("categories LIKE ?", "%\""+categoryID+"\"%").
		Order("variant_group, variant").Find(&list).Error
	return list, wrapErr(err)
}

func (r *VariantRepository) ListByGroup(ctx context.Context, group string) ([]models.Variant, error) {
	var list []models.Variant
	err := r.db.WithContext(ctx).Where("variant_group = ?", group).Order("variant").Find(&list).Error
	return list, wrapErr(err)
}

func (r *VariantRepository) UpdateBySKU(ctx context.Context, sku string, patch *models.Variant, columns ...string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Variant{}).Where("sku = ?", sku).Select(columns).Updates(patch)
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *VariantRepository) DeleteGroup(ctx context.Context, group string) (int64, error) {
	res := r.db.WithContext(ctx).Where("variant_group = ?", group).Delete(&models.Variant{})
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *VariantRepository) DeleteBySKU(ctx context.Context, sku string) (int64, error) {
	res := r.db.WithContext(ctx).Where("sku = ?", sku).Delete(&models.Variant{})
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *VariantRepository) translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Validation(apperrors.ErrCodeVariantExists, "Variant with this SKU already exists")
	}
	return wrapErr(err)
}
