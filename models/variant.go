package models

import (
	"time"

	"gorm.io/gorm"
)

// Variant mô tả một lựa chọn thuộc tính (màu, size...) theo nhóm
type Variant struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	SKU        string     `json:"sku" gorm:"uniqueIndex;not null"`
	Group      string     `json:"group" gorm:"column:variant_group;index"`
	Categories StringList `json:"categories,omitempty" gorm:"serializer:json;type:text"`
	Variant    string     `json:"variant"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *Variant) BeforeCreate(tx *gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
