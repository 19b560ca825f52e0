package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountUsage là một dòng bất biến trong sổ sử dụng mã giảm giá
type DiscountUsage struct {
	ID           string          `json:"id" gorm:"primaryKey;size:36"`
	CustomerID   string          `json:"customer_id" gorm:"index:idx_usage_customer_discount;not null"`
	DiscountID   string          `json:"discount_id" gorm:"index:idx_usage_customer_discount;index;not null"`
	ProductID    string          `json:"product_id" gorm:"index;not null"`
	DiscountCost decimal.Decimal `json:"discount_cost" gorm:"type:decimal(16,2)"`
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	AppliedAt    time.Time       `json:"applied_at"`
}

func (u *DiscountUsage) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// UsageSummary gom nhóm sổ theo (năm, tháng)
type UsageSummary struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Uses      int64           `json:"uses"`
	TotalCost decimal.Decimal `json:"total_cost"`
}
