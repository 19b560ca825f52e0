package repositories

import (
	"context"

	"catalog/models"

	"gorm.io/gorm"
)

// CategoryStore là các thao tác lưu trữ cây danh mục
type CategoryStore interface {
	Create(ctx context.Context, c *models.Category) error
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindChildren(ctx context.Context, parentID string) ([]models.Category, error)
	FindByLevel(ctx context.Context, level int) ([]models.Category, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (int64, error)
	SetParent(ctx context.Context, id string, parentID *string, level int) error
	ShiftLevel(ctx context.Context, id string, delta int) error
	Delete(ctx context.Context, id string) (int64, error)
	Transaction(ctx context.Context, fn func(store CategoryStore) error) error
}

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	return wrapErr(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &c, nil
}

func (r *CategoryRepository) FindChildren(ctx context.Context, parentID string) ([]models.Category, error) {
	var list []models.Category
	err := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Order("created_at").Find(&list).Error
	return list, wrapErr(err)
}

func (r *CategoryRepository) FindByLevel(ctx context.Context, level int) ([]models.Category, error) {
	var list []models.Category
	err := r.db.WithContext(ctx).Where("level = ?", level).Order("name").Find(&list).Error
	return list, wrapErr(err)
}

func (r *CategoryRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *CategoryRepository) SetParent(ctx context.Context, id string, parentID *string, level int) error {
	return wrapErr(r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).
		Updates(map[string]interface{}{"parent_id": parentID, "level": level}).Error)
}

func (r *CategoryRepository) ShiftLevel(ctx context.Context, id string, delta int) error {
	return wrapErr(r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).
		Update("level", gorm.Expr("level + ?", delta)).Error)
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *CategoryRepository) Transaction(ctx context.Context, fn func(store CategoryStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CategoryRepository{db: tx})
	})
}
