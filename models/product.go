package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID                string           `json:"id" gorm:"primaryKey;size:36"`
	SellerID          string           `json:"seller_id" gorm:"index;not null"`
	Name              string           `json:"name" gorm:"not null"`
	Slug              string           `json:"slug" gorm:"uniqueIndex;not null"`
	Description       string           `json:"description" gorm:"type:text"`
	Origin            string           `json:"origin"`
	Address           string           `json:"address"`
	Images            StringList       `json:"images" gorm:"serializer:json;type:text"`
	Tags              StringList       `json:"tags" gorm:"serializer:json;type:text"`
	Categories        []CategoryRef    `json:"categories" gorm:"serializer:json;type:text"`
	Variants          []ProductVariant `json:"variants" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	UpcomingDiscounts StringList       `json:"upcoming_discounts" gorm:"serializer:json;type:text"`
	OngoingDiscounts  StringList       `json:"ongoing_discounts" gorm:"serializer:json;type:text"`
	ExpiredDiscounts  StringList       `json:"expired_discounts" gorm:"serializer:json;type:text"`
	SoldCount         int              `json:"sold_count" gorm:"index"`
	IsActive          bool             `json:"is_active"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	DiscountValue decimal.Decimal `json:"discount_value" gorm:"-"`
	Rating        float64         `json:"rating" gorm:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// ProductVariant là một SKU bán được của sản phẩm
type ProductVariant struct {
	ID        string          `json:"id" gorm:"primaryKey;size:36"`
	ProductID string          `json:"product_id" gorm:"index;size:36;not null"`
	SKU       string          `json:"sku" gorm:"uniqueIndex;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(16,2)"`
	Stock     int             `json:"stock"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// Bucket trả về danh sách discount của sản phẩm ứng với status
func (p *Product) Bucket(status DiscountStatus) *StringList {
	switch status {
	case StatusUpcoming:
		return &p.UpcomingDiscounts
	case StatusOngoing:
		return &p.OngoingDiscounts
	default:
		return &p.ExpiredDiscounts
	}
}

// BucketColumn là tên cột tương ứng với Bucket
func BucketColumn(status DiscountStatus) string {
	return fmt.Sprintf("%s_discounts", status)
}

func (p *Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// PriceRange trả về "min-max", hoặc một giá nếu min == max
func (p *Product) PriceRange() string {
	if len(p.Variants) == 0 {
		return ""
	}
	lo, hi := p.Variants[0].Price, p.Variants[0].Price
	for _, v := range p.Variants[1:] {
		if v.Price.LessThan(lo) {
			lo = v.Price
		}
		if v.Price.GreaterThan(hi) {
			hi = v.Price
		}
	}
	if lo.Equal(hi) {
		return lo.StringFixed(2)
	}
	return lo.StringFixed(2) + "-" + hi.StringFixed(2)
}

// ProductLog là nhật ký thay đổi của sản phẩm
type ProductLog struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ProductID string    `json:"product_id" gorm:"index;not null"`
	Title     string    `json:"title"`
	Content   string    `json:"content" gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (l *ProductLog) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// ProductAnalytic là số liệu tháng của một sản phẩm
type ProductAnalytic struct {
	ID                   string          `json:"id" gorm:"primaryKey;size:36"`
	ProductID            string          `json:"product_id" gorm:"uniqueIndex:idx_analytic_period;not null"`
	Year                 int             `json:"year" gorm:"uniqueIndex:idx_analytic_period"`
	Month                int             `json:"month" gorm:"uniqueIndex:idx_analytic_period"`
	Revenue              decimal.Decimal `json:"revenue" gorm:"type:decimal(16,2)"`
	Visitor              int             `json:"visitor"`
	WishlistAdditions    int             `json:"wishlist_additions"`
	CartAdditions        int             `json:"cart_additions"`
	OrdersPlaced         int             `json:"orders_placed"`
	OrdersCancelled      int             `json:"orders_cancelled"`
	OrdersSuccessful     int             `json:"orders_successful"`
	Reversal             int             `json:"reversal"`
	DiscountApplications int             `json:"discount_applications"`
}

func (a *ProductAnalytic) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
