package repositories

import (
	"context"
	"errors"

	apperrors "catalog/errors"
	"catalog/models"

	"gorm.io/gorm"
)

type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []string, activeOnly bool) ([]models.Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Product, error)
	ListActive(ctx context.Context, limit int) ([]models.Product, error)
	ListAll(ctx context.Context) ([]models.Product, error)
	TopSelling(ctx context.Context, limit int) ([]models.Product, error)
	UpdateColumns(ctx context.Context, p *models.Product, columns ...string) (int64, error)
	ToggleActive(ctx context.Context, id string, current bool) (int64, error)
	FindVariant(ctx context.Context, productID, sku string) (*models.ProductVariant, error)
	AdjustStock(ctx context.Context, productID, sku string, delta int) (int64, error)
	IncrementSold(ctx context.Context, id string, n int) error
	PlaceInBucket(ctx context.Context, productID string, status models.DiscountStatus, discountID string) (bool, error)
	RemoveFromBuckets(ctx context.Context, productID, discountID string) (bool, error)
	MoveBucket(ctx context.Context, productID, discountID string, from, to models.DiscountStatus) error
	Delete(ctx context.Context, id string) (int64, error)
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Preload("Variants").Where("id = ?", id).First(&p).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &p, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string, activeOnly bool) ([]models.Product, error) {
	var list []models.Product
	if len(ids) == 0 {
		return list, nil
	}
	q := r.db.WithContext(ctx).Preload("Variants").Where("id IN ?", ids)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	return list, wrapErr(q.Find(&list).Error)
}

func (r *ProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, wrapErr(err)
}

func (r *ProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	var list []models.Product
	err := r.db.WithContext(ctx).Preload("Variants").Where("seller_id = ?", sellerID).
		Order("created_at DESC").Find(&list).Error
	return list, wrapErr(err)
}

func (r *ProductRepository) ListActive(ctx context.Context, limit int) ([]models.Product, error) {
	var list []models.Product
	err := r.db.WithContext(ctx).Preload("Variants").Where("is_active = ?", true).
		Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, wrapErr(err)
}

func (r *ProductRepository) ListAll(ctx context.Context) ([]models.Product, error) {
	var list []models.Product
	err := r.db.WithContext(ctx).Preload("Variants").Order("created_at").Find(&list).Error
	return list, wrapErr(err)
}

func (r *ProductRepository) TopSelling(ctx context.Context, limit int) ([]models.Product, error) {
	var list []models.Product
	err := r.db.WithContext(ctx).Preload("Variants").Where("is_active = ?", true).
		Order("sold_count DESC").Limit(limit).Find(&list).Error
	return list, wrapErr(err)
}

// UpdateColumns ghi các cột được chọn từ struct (áp dụng serializer json cho cột mảng)
func (r *ProductRepository) UpdateColumns(ctx context.Context, p *models.Product, columns ...string) (int64, error) {
	res := r.db.WithContext(ctx).Model(p).Select(columns).Updates(p)
	return res.RowsAffected, r.translate(res.Error)
}

func (r *ProductRepository) ToggleActive(ctx context.Context, id string, current bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND is_active = ?", id, current).Update("is_active", !current)
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *ProductRepository) FindVariant(ctx context.Context, productID, sku string) (*models.ProductVariant, error) {
	var v models.ProductVariant
	err := r.db.WithContext(ctx).Where("product_id = ? AND sku = ?", productID, sku).First(&v).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &v, nil
}

// AdjustStock cộng delta vào tồn kho; không ghi nếu kết quả âm
func (r *ProductRepository) AdjustStock(ctx context.Context, productID, sku string, delta int) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ? AND sku = ? AND stock + ? >= 0", productID, sku, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *ProductRepository) IncrementSold(ctx context.Context, id string, n int) error {
	return wrapErr(r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).
		UpdateColumn("sold_count", gorm.Expr("sold_count + ?", n)).Error)
}

// PlaceInBucket đặt discount vào đúng bucket của status, gỡ khỏi mọi bucket khác
func (r *ProductRepository) PlaceInBucket(ctx context.Context, productID string, status models.DiscountStatus, discountID string) (bool, error) {
	return r.mutateBuckets(ctx, productID, func(p *models.Product) bool {
		changed := false
		for _, s := range models.AllStatuses {
			if s == status {
				continue
			}
			list, c := p.Bucket(s).Without(discountID)
			*p.Bucket(s) = list
			changed = changed || c
		}
		list, c := p.Bucket(status).With(discountID)
		*p.Bucket(status) = list
		return changed || c
	})
}

func (r *ProductRepository) RemoveFromBuckets(ctx context.Context, productID, discountID string) (bool, error) {
	return r.mutateBuckets(ctx, productID, func(p *models.Product) bool {
		changed := false
		for _, s := range models.AllStatuses {
			list, c := p.Bucket(s).Without(discountID)
			*p.Bucket(s) = list
			changed = changed || c
		}
		return changed
	})
}

func (r *ProductRepository) MoveBucket(ctx context.Context, productID, discountID string, from, to models.DiscountStatus) error {
	_, err := r.mutateBuckets(ctx, productID, func(p *models.Product) bool {
		if !p.Bucket(from).Contains(discountID) {
			return false
		}
		*p.Bucket(from), _ = p.Bucket(from).Without(discountID)
		*p.Bucket(to), _ = p.Bucket(to).With(discountID)
		return true
	})
	return err
}

// mutateBuckets trả về false nếu sản phẩm không tồn tại
func (r *ProductRepository) mutateBuckets(ctx context.Context, productID string, fn func(p *models.Product) bool) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		err := forUpdate(tx).Where("id = ?", productID).First(&p).Error
		if isNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		if !fn(&p) {
			return nil
		}
		return tx.Model(&p).
			Select("upcoming_discounts", "ongoing_discounts", "expired_discounts").
			Updates(&p).Error
	})
	return found, wrapErr(err)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Product{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, wrapErr(err)
}

func (r *ProductRepository) translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Validation(apperrors.ErrCodeInvalidProductData, "Product slug or variant SKU already exists")
	}
	return wrapErr(err)
}
