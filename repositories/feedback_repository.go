package repositories

import (
	"context"
	"time"

	"catalog/models"

	"gorm.io/gorm"
)

// FeedbackFilter lọc feedback của một seller
type FeedbackFilter struct {
	SellerID  string
	ProductID string
	Rating    int
	HasReply  *bool
}

type FeedbackStore interface {
	Create(ctx context.Context, f *models.Feedback) error
	FindByID(ctx context.Context, id string) (*models.Feedback, error)
	ListByProduct(ctx context.Context, productID string, offset, limit int) ([]models.Feedback, int64, error)
	ListBySeller(ctx context.Context, filter FeedbackFilter, offset, limit int) ([]models.Feedback, int64, error)
	SetReply(ctx context.Context, id, comment string, at time.Time) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	RatingSummary(ctx context.Context, productID string) (*models.RatingSummary, error)
	AverageRatings(ctx context.Context, productIDs []string) (map[string]float64, error)
}

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, f *models.Feedback) error {
	return wrapErr(r.db.WithContext(ctx).Create(f).Error)
}

func (r *FeedbackRepository) FindByID(ctx context.Context, id string) (*models.Feedback, error) {
	var f models.Feedback
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &f, nil
}

func (r *FeedbackRepository) ListByProduct(ctx context.Context, productID string, offset, limit int) ([]models.Feedback, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Feedback{}).Where("product_id = ?", productID)
	return r.page(q, offset, limit)
}

func (r *FeedbackRepository) ListBySeller(ctx context.Context, filter FeedbackFilter, offset, limit int) ([]models.Feedback, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Feedback{}).Where("seller_id = ?", filter.SellerID)
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Rating > 0 {
		q = q.Where("rating = ?", filter.Rating)
	}
	if filter.HasReply != nil {
		if *filter.HasReply {
			q = q.Where("replied_at IS NOT NULL")
		} else {
			q = q.Where("replied_at IS NULL")
		}
	}
	return r.page(q, offset, limit)
}

func (r *FeedbackRepository) page(q *gorm.DB, offset, limit int) ([]models.Feedback, int64, error) {
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err)
	}
	var list []models.Feedback
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, wrapErr(err)
}

func (r *FeedbackRepository) SetReply(ctx context.Context, id, comment string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Feedback{}).Where("id = ?", id).
		Updates(map[string]interface{}{"reply_comment": comment, "replied_at": at})
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *FeedbackRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Feedback{})
	return res.RowsAffected, wrapErr(res.Error)
}

func (r *FeedbackRepository) RatingSummary(ctx context.Context, productID string) (*models.RatingSummary, error) {
	var rows []struct {
		Rating int
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).
		Select("rating, COUNT(*) AS total").
		Where("product_id = ?", productID).
		Group("rating").Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}

	summary := models.NewRatingSummary()
	var sum int64
	for _, row := range rows {
		if row.Rating < 1 || row.Rating > 5 {
			continue
		}
		summary.Distribution[row.Rating] = row.Total
		summary.Total += row.Total
		sum += int64(row.Rating) * row.Total
	}
	if summary.Total > 0 {
		summary.Average = float64(sum) / float64(summary.Total)
	}
	return summary, nil
}

func (r *FeedbackRepository) AverageRatings(ctx context.Context, productIDs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ProductID string
		Average   float64
	}
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).
		Select("product_id, AVG(rating) AS average").
		Where("product_id IN ?", productIDs).
		Group("product_id").Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	for _, row := range rows {
		out[row.ProductID] = row.Average
	}
	return out, nil
}
