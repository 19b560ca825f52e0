package dto

import (
	"time"

	"catalog/models"

	"github.com/shopspring/decimal"
)

// CreateDiscountRequest là DTO cho yêu cầu tạo mới discount
type CreateDiscountRequest struct {
	Code               string              `json:"code" validate:"required"`
	Type               models.DiscountType `json:"type" validate:"required,oneof=percentage flash-sale first-time free-shipping"`
	Value              *decimal.Decimal    `json:"value" validate:"required"`
	MinimumPurchase    *decimal.Decimal    `json:"minimum_purchase" validate:"required"`
	MaxUses            *int                `json:"max_uses" validate:"required,min=0"`
	CustomerUsageLimit *int                `json:"customer_usage_limit" validate:"omitempty,min=1"`
	ApplicableProducts []string            `json:"applicable_products"`
	StartDate          *time.Time          `json:"start_date" validate:"required"`
	EndDate            *time.Time          `json:"end_date" validate:"required"`
}

// RecordUsageRequest ghi nhận một lần khách dùng mã
type RecordUsageRequest struct {
	DiscountID   string           `json:"discount_id" validate:"required"`
	ProductID    string           `json:"product_id" validate:"required"`
	DiscountCost *decimal.Decimal `json:"discount_cost" validate:"required"`
}

// RefreshResult là số discount đổi trạng thái sau một lượt refresh
type RefreshResult struct {
	Ongoing int `json:"ongoing"`
	Expired int `json:"expired"`
}
