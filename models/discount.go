package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DiscountType string

const (
	DiscountPercentage   DiscountType = "percentage"
	DiscountFlashSale    DiscountType = "flash-sale"
	DiscountFirstTime    DiscountType = "first-time"
	DiscountFreeShipping DiscountType = "free-shipping"
)

type DiscountStatus string

const (
	StatusUpcoming DiscountStatus = "upcoming"
	StatusOngoing  DiscountStatus = "ongoing"
	StatusExpired  DiscountStatus = "expired"
)

// AllStatuses theo thứ tự vòng đời
var AllStatuses = []DiscountStatus{StatusUpcoming, StatusOngoing, StatusExpired}

type Discount struct {
	ID                 string          `json:"id" gorm:"primaryKey;size:36"`
	SellerID           string          `json:"seller_id" gorm:"index;not null"`
	Code               string          `json:"code" gorm:"index;not null"`
	Type               DiscountType    `json:"type" gorm:"size:20;not null"`
	Value              decimal.Decimal `json:"value" gorm:"type:decimal(5,2)"`
	MinimumPurchase    decimal.Decimal `json:"minimum_purchase" gorm:"type:decimal(16,2)"`
	MaxUses            int             `json:"max_uses"`
	CurrentUses        int             `json:"current_uses"`
	CustomerUsageLimit int             `json:"customer_usage_limit"`
	ApplicableProducts StringList      `json:"applicable_products" gorm:"serializer:json;type:text"`
	Status             DiscountStatus  `json:"status" gorm:"size:20;index"`
	IsActive           bool            `json:"is_active"`
	StartDate          time.Time       `json:"start_date"`
	EndDate            time.Time       `json:"end_date"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *Discount) BeforeCreate(tx *gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

// DetermineDiscountStatus là hàm thuần của (now, start, end); hai biên start và end đều tính là ongoing
func DetermineDiscountStatus(now, start, end time.Time) DiscountStatus {
	if now.Before(start) {
		return StatusUpcoming
	}
	if !now.After(end) {
		return StatusOngoing
	}
	return StatusExpired
}

// CurrentStatus tính lại trạng thái tại thời điểm now
func (d *Discount) CurrentStatus(now time.Time) DiscountStatus {
	return DetermineDiscountStatus(now, d.StartDate, d.EndDate)
}

// Refresh ghi đè Status bằng giá trị tính lại
func (d *Discount) Refresh(now time.Time) *Discount {
	d.Status = d.CurrentStatus(now)
	return d
}

func (d *Discount) Unlimited() bool {
	return d.MaxUses == 0
}
