package models

import (
	"time"

	"gorm.io/gorm"
)

// Category là một nút trong cây danh mục; ParentID nil nghĩa là gốc
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"index"`
	ImageURI    string    `json:"image_uri,omitempty"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	ParentID    *string   `json:"parent_id" gorm:"index;size:36"`
	Level       int       `json:"level" gorm:"index"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// CategoryRef là một phần tử của đường dẫn tổ tiên
type CategoryRef struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
}
