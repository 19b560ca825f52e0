package dto

// CreateRootCategoryRequest tạo danh mục gốc; level mặc định 0
type CreateRootCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Level       *int   `json:"level" validate:"omitempty,min=0"`
	ImageURI    string `json:"image_uri"`
	Description string `json:"description"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	ParentID    string `json:"parent_id" validate:"required"`
	Level       *int   `json:"level" validate:"required,min=0"`
	ImageURI    string `json:"image_uri"`
	Description string `json:"description"`
}

// InsertCategoryRequest chèn nút mới giữa parent_id và children_id
type InsertCategoryRequest struct {
	CreateCategoryRequest
	ChildrenID string `json:"children_id" validate:"required"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	ImageURI    *string `json:"image_uri"`
	Description *string `json:"description"`
}
