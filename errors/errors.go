package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind phân loại lỗi theo cách tầng transport hiển thị
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindUnauthorized
	KindOperationFailed
	KindBackend
)

// ErrorCode định nghĩa mã lỗi
type ErrorCode string

const (
	// Common
	ErrCodeMissingFields   ErrorCode = "MISSING_FIELDS"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken    ErrorCode = "INVALID_TOKEN"
	ErrCodeMissingToken    ErrorCode = "MISSING_TOKEN"
	ErrCodeDBOperation     ErrorCode = "DB_OPERATION_FAILED"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeUpstreamFailure ErrorCode = "UPSTREAM_FAILURE"

	// Category
	ErrCodeCategoryNotFound ErrorCode = "CATEGORY_NOT_FOUND"
	ErrCodeParentNotFound   ErrorCode = "PARENT_NOT_FOUND"
	ErrCodeChildNotFound    ErrorCode = "CHILD_NOT_FOUND"
	ErrCodeCategoryCycle    ErrorCode = "CATEGORY_CYCLE"

	// Discount
	ErrCodeInvalidDiscountData       ErrorCode = "INVALID_DISCOUNT_DATA"
	ErrCodeInvalidFlashSaleTime      ErrorCode = "INVALID_FLASH_SALE_TIME"
	ErrCodeInvalidFlashSaleDuration  ErrorCode = "INVALID_FLASH_SALE_DURATION"
	ErrCodeInvalidFlashSaleStartTime ErrorCode = "INVALID_FLASH_SALE_START_TIME"
	ErrCodeDiscountNotFound          ErrorCode = "DISCOUNT_NOT_FOUND"
	ErrCodeToggleFailed              ErrorCode = "TOGGLE_FAILED"
	ErrCodeInvalidDiscount           ErrorCode = "INVALID_DISCOUNT"
	ErrCodeExpiredDiscount           ErrorCode = "EXPIRED_DISCOUNT"
	ErrCodeDeleteFailed              ErrorCode = "DELETE_FAILED"
	ErrCodeUsageLimitExceeded        ErrorCode = "USAGE_LIMIT_EXCEEDED"
	ErrCodeUsageExhausted            ErrorCode = "DISCOUNT_USAGE_EXHAUSTED"

	// Product / variant / feedback
	ErrCodeProductNotFound     ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidProductData  ErrorCode = "INVALID_PRODUCT_DATA"
	ErrCodeInvalidUpdateFields ErrorCode = "INVALID_UPDATE_FIELDS"
	ErrCodeSkuNotFound         ErrorCode = "SKU_NOT_FOUND"
	ErrCodeInsufficientStock   ErrorCode = "INSUFFICIENT_STOCK"
	ErrCodeInvalidStockValue   ErrorCode = "INVALID_STOCK_VALUE"
	ErrCodeVariantNotFound     ErrorCode = "VARIANT_NOT_FOUND"
	ErrCodeVariantExists       ErrorCode = "VARIANT_EXISTS"
	ErrCodeFeedbackNotFound    ErrorCode = "FEEDBACK_NOT_FOUND"
	ErrCodeMissingComment      ErrorCode = "MISSING_COMMENT"
	ErrCodeInvalidRating       ErrorCode = "INVALID_RATING"
	ErrCodeUploadFailed        ErrorCode = "UPLOAD_FAILED"
)

// AppError định nghĩa lỗi của ứng dụng
type AppError struct {
	Kind    Kind
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus ánh xạ Kind sang mã HTTP
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindOperationFailed:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError tạo một AppError mới
func NewAppError(kind Kind, code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Validation(code ErrorCode, message string) *AppError {
	return NewAppError(KindValidation, code, message, nil)
}

func NotFound(code ErrorCode, message string) *AppError {
	return NewAppError(KindNotFound, code, message, nil)
}

func Unauthorized(message string) *AppError {
	return NewAppError(KindUnauthorized, ErrCodeUnauthorized, message, nil)
}

func OperationFailed(code ErrorCode, message string) *AppError {
	return NewAppError(KindOperationFailed, code, message, nil)
}

// Backend bọc lỗi hạ tầng (DB, index, broker) thành một lỗi đồng nhất
func Backend(err error) *AppError {
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}
	return NewAppError(KindBackend, ErrCodeDBOperation, "Database operation failed", err)
}

// IsAppError kiểm tra xem error có phải là AppError không
func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

// GetAppError lấy AppError từ error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsCode kiểm tra mã lỗi của err
func IsCode(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}
