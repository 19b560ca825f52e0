package models

import (
	"time"

	"gorm.io/gorm"
)

type Feedback struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	CustomerID   string     `json:"customer_id" gorm:"index;not null"`
	ProductID    string     `json:"product_id" gorm:"index;not null"`
	SellerID     string     `json:"seller_id" gorm:"index;not null"`
	Rating       int        `json:"rating"`
	Comment      string     `json:"comment" gorm:"type:text"`
	Images       StringList `json:"images" gorm:"serializer:json;type:text"`
	ReplyComment string     `json:"reply_comment,omitempty" gorm:"type:text"`
	RepliedAt    *time.Time `json:"replied_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Username string `json:"username,omitempty" gorm:"-"`
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

// RatingSummary là điểm trung bình và phân bố 1..5 sao
type RatingSummary struct {
	Average      float64       `json:"average"`
	Total        int64         `json:"total"`
	Distribution map[int]int64 `json:"distribution"`
}

func NewRatingSummary() *RatingSummary {
	return &RatingSummary{Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
}
