package dto

import (
	"encoding/json"
	"time"

	"catalog/models"

	"github.com/shopspring/decimal"
)

type ProductVariantRequest struct {
	SKU   string           `json:"sku" validate:"required"`
	Price *decimal.Decimal `json:"price" validate:"required"`
	Stock int              `json:"stock" validate:"min=0"`
}

type CreateProductRequest struct {
	Name        string                  `json:"name" validate:"required"`
	Description string                  `json:"description"`
	Origin      string                  `json:"origin"`
	Address     string                  `json:"address"`
	Images      []string                `json:"images"`
	Tags        []string                `json:"tags"`
	CategoryID  string                  `json:"category_id"`
	Variants    []ProductVariantRequest `json:"variants" validate:"required,min=1,dive"`
}

// UpdateProductRequest: keys[i] được gán values[i]
type UpdateProductRequest struct {
	Keys   []string          `json:"keys" validate:"required,min=1"`
	Values []json.RawMessage `json:"values" validate:"required,min=1"`
}

// StockRequest: cộng/trừ tồn kho theo SKU
type StockRequest struct {
	SKU        string `json:"sku" validate:"required"`
	StockValue int    `json:"stock_value"`
}

type ProductIDsRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1"`
}

type SellerProductsRequest struct {
	Minimum bool `json:"minimum"`
}

type SearchRequest struct {
	Query string `json:"query" form:"query"`
	PageQuery
}

type FilterRequest struct {
	Query      string   `json:"query"`
	Categories []string `json:"categories"`
	Origins    []string `json:"origins"`
	MinRating  *float64 `json:"min_rating" validate:"omitempty,min=0,max=5"`
	PageQuery
}

// SellerProduct là một dòng trong danh sách sản phẩm của seller
type SellerProduct struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Image      string `json:"image,omitempty"`
	PriceRange string `json:"price_range,omitempty"`
	TotalStock *int   `json:"total_stock,omitempty"`
	IsActive   *bool  `json:"is_active,omitempty"`
	SoldCount  *int   `json:"sold_count,omitempty"`
}

// SearchResult là kết quả search/filter đã làm phẳng
type SearchResult struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Source   string           `json:"source"`
}

// ProductCreatedEvent được gửi lên topic product_created
type ProductCreatedEvent struct {
	ProductID string    `json:"product_id"`
	SellerID  string    `json:"seller_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
