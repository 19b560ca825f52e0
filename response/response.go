package response

import (
	"net/http"

	apperrors "catalog/errors"

	"github.com/gin-gonic/gin"
)

// Response định nghĩa cấu trúc response thành công
type Response struct {
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination định nghĩa cấu trúc phân trang
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// ErrorBody là phần "error" của response lỗi
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Success trả về response thành công
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Message: message,
		Data:    data,
	})
}

// Created trả về 201
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Message: message,
		Data:    data,
	})
}

// SuccessWithPagination trả về response thành công có phân trang
func SuccessWithPagination(c *gin.Context, message string, data interface{}, page, limit int, total int64) {
	c.JSON(http.StatusOK, Response{
		Message: message,
		Data:    data,
		Pagination: &Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

// Error hiển thị lỗi theo AppError; lỗi lạ trả về 500 chung chung
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		ServerError(c)
		return
	}
	message := appErr.Message
	if appErr.Kind == apperrors.KindBackend {
		message = "Internal server error"
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus(), ErrorResponse{
		Error: ErrorBody{Message: message, Code: string(appErr.Code)},
	})
}

// BadRequest trả về response lỗi bad request
func BadRequest(c *gin.Context, code apperrors.ErrorCode, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorBody{Message: message, Code: string(code)},
	})
}

// ServerError trả về response lỗi server
func ServerError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorBody{Message: "Internal server error", Code: string(apperrors.ErrCodeInternal)},
	})
}

// Unauthorized trả về response chưa xác thực
func Unauthorized(c *gin.Context, code apperrors.ErrorCode, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error: ErrorBody{Message: message, Code: string(code)},
	})
}

// Forbidden trả về response không có quyền
func Forbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
		Error: ErrorBody{Message: "You are not allowed to access this resource", Code: string(apperrors.ErrCodeUnauthorized)},
	})
}
