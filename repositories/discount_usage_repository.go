package repositories

import (
	"context"

	"catalog/models"

	"gorm.io/gorm"
)

type DiscountUsageStore interface {
	Create(ctx context.Context, u *models.DiscountUsage) error
	CountByCustomer(ctx context.Context, customerID, discountID string) (int64, error)
	CountsByCustomer(ctx context.Context, customerID string, discountIDs []string) (map[string]int64, error)
	ListByDiscount(ctx context.Context, discountID string, limit int) ([]models.DiscountUsage, error)
	ListByProductAndCustomer(ctx context.Context, productID, customerID string) ([]models.DiscountUsage, error)
	SummaryByDiscount(ctx context.Context, discountID string) ([]models.UsageSummary, error)
}

type DiscountUsageRepository struct {
	db *gorm.DB
}

func NewDiscountUsageRepository(db *gorm.DB) *DiscountUsageRepository {
	return &DiscountUsageRepository{db: db}
}

func (r *DiscountUsageRepository) Create(ctx context.Context, u *models.DiscountUsage) error {
	return wrapErr(r.db.WithContext(ctx).Create(u).Error)
}

func (r *DiscountUsageRepository) CountByCustomer(ctx context.Context, customerID, discountID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.DiscountUsage{}).
		Where("customer_id = ? AND discount_id = ?", customerID, discountID).Count(&n).Error
	return n, wrapErr(err)
}

func (r *DiscountUsageRepository) CountsByCustomer(ctx context.Context, customerID string, discountIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(discountIDs))
	if len(discountIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		DiscountID string
		Uses       int64
	}
	err := r.db.WithContext(ctx).Model(&models.DiscountUsage{}).
		Select("discount_id, COUNT(*) AS uses").
		Where("customer_id = ? AND discount_id IN ?", customerID, discountIDs).
		Group("discount_id").Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	for _, row := range rows {
		out[row.DiscountID] = row.Uses
	}
	return out, nil
}

func (r *DiscountUsageRepository) ListByDiscount(ctx context.Context, discountID string, limit int) ([]models.DiscountUsage, error) {
	var list []models.DiscountUsage
	err := r.db.WithContext(ctx).Where("discount_id = ?", discountID).
		Order("applied_at DESC").Limit(limit).Find(&list).Error
	return list, wrapErr(err)
}

func (r *DiscountUsageRepository) ListByProductAndCustomer(ctx context.Context, productID, customerID string) ([]models.DiscountUsage, error) {
	var list []models.DiscountUsage
	err := r.db.WithContext(ctx).Where("product_id = ? AND customer_id = ?", productID, customerID).
		Order("applied_at DESC").Find(&list).Error
	return list, wrapErr(err)
}

func (r *DiscountUsageRepository) SummaryByDiscount(ctx context.Context, discountID string) ([]models.UsageSummary, error) {
	var rows []models.UsageSummary
	err := r.db.WithContext(ctx).Model(&models.DiscountUsage{}).
		Select("year, month, COUNT(*) AS uses, COALESCE(SUM(discount_cost), 0) AS total_cost").
		Where("discount_id = ?", discountID).
		Group("year, month").Order("year DESC, month DESC").
		Scan(&rows).Error
	return rows, wrapErr(err)
}
