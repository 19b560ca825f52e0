package repositories

import (
	"context"
	"time"

	"catalog/models"

	"gorm.io/gorm"
)

type DiscountStore interface {
	Create(ctx context.Context, d *models.Discount) error
	FindByID(ctx context.Context, id string) (*models.Discount, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Discount, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Discount, error)
	ListActiveByType(ctx context.Context, t models.DiscountType) ([]models.Discount, error)
	ListStale(ctx context.Context, now time.Time) ([]models.Discount, error)
	SetStatus(ctx context.Context, id string, from, to models.DiscountStatus) (int64, error)
	ToggleActive(ctx context.Context, id string, current bool) (int64, error)
	AddApplicableProduct(ctx context.Context, id, productID string) (*models.Discount, error)
	RemoveApplicableProduct(ctx context.Context, id, productID string) (*models.Discount, error)
	IncrementUses(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type DiscountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

func (r *DiscountRepository) Create(ctx context.Context, d *models.Discount) error {
	return wrapErr(r.db.WithContext(ctx).Create(d).Error)
}

func (r *DiscountRepository) FindByID(ctx context.Context, id string) (*models.Discount, error) {
	var d models.Discount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &d, nil
}

func (r *DiscountRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Discount, error) {
	var list []models.Discount
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, wrapErr(err)
}

func (r *DiscountRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Discount, error) {
	var list []models.Discount
	err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).Order("start_date DESC").Find(&list).Error
	return list, wrapErr(err)
}

func (r *DiscountRepository) ListActiveByType(ctx context.Context, t models.DiscountType) ([]models.Discount, error) {
	var list []models.Discount
	err := r.db.WithContext(ctx).Where("type = ? AND is_active = ?", t, true).Find(&list).Error
	return list, wrapErr(err)
}

// ListStale lấy các discount có status đã lệch so với thời điểm now
func (r *DiscountRepository) ListStale(ctx context.Context, now time.Time) ([]models.Discount, error) {
	var list []models.Discount
	err := r.db.WithContext(ctx).
		Where("(status = ? AND start_date <= ? AND end_date >= ?) OR (status IN ? AND end_date < ?)",
			models.StatusUpcoming, now, now,
			[]models.DiscountStatus{models.StatusUpcoming, models.StatusOngoing}, now).
		Find(&list).Error
	return list, wrapErr(err)
}

// SetStatus chỉ ghi khi status hiện tại vẫn là from
func (r *DiscountRepository) SetStatus(ctx context.Context, id string, from, to models.DiscountStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Discount{}).
		Where("id = ? AND status = ?", id, from).Update("status", to)
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *DiscountRepository) ToggleActive(ctx context.Context, id string, current bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Discount{}).
		Where("id = ? AND is_active = ?", id, current).Update("is_active", !current)
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *DiscountRepository) AddApplicableProduct(ctx context.Context, id, productID string) (*models.Discount, error) {
	return r.mutateProducts(ctx, id, func(l models.StringList) (models.StringList, bool) {
		return l.With(productID)
	})
}

func (r *DiscountRepository) RemoveApplicableProduct(ctx context.Context, id, productID string) (*models.Discount, error) {
	return r.mutateProducts(ctx, id, func(l models.StringList) (models.StringList, bool) {
		return l.Without(productID)
	})
}

// mutateProducts đọc-sửa-ghi applicable_products trong một transaction; trả về nil nếu discount không còn
func (r *DiscountRepository) mutateProducts(ctx context.Context, id string, fn func(models.StringList) (models.StringList, bool)) (*models.Discount, error) {
	var out *models.Discount
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d models.Discount
		err := forUpdate(tx).Where("id = ?", id).First(&d).Error
		if isNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		list, changed := fn(d.ApplicableProducts)
		if changed {
			d.ApplicableProducts = list
			if err := tx.Model(&d).Select("applicable_products").Updates(&d).Error; err != nil {
				return err
			}
		}
		out = &d
		return nil
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return out, nil
}

// IncrementUses tăng current_uses nếu chưa chạm max_uses (0 = không giới hạn)
func (r *DiscountRepository) IncrementUses(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Discount{}).
		Where("id = ? AND (max_uses = 0 OR current_uses < max_uses)", id).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *DiscountRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Discount{})
	return res.RowsAffected, wrapErr(res.Error)
}
