package dto

import (
	"catalog/constants"
	"catalog/response"
)

// PaginatedResponse là struct chung cho các response có phân trang
type PaginatedResponse[T any] struct {
	Data       T                   `json:"data"`
	Pagination response.Pagination `json:"pagination"`
}

// PageQuery đọc page/limit từ query string
type PageQuery struct {
	Page  int `form:"page" json:"page"`
	Limit int `form:"limit" json:"limit"`
}

// Normalize trả về page, limit đã chặn biên và offset tương ứng
func (q PageQuery) Normalize() (page, limit, offset int) {
	page, limit = q.Page, q.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	return page, limit, (page - 1) * limit
}
