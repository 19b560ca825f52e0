package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"catalog/constants"
	"catalog/dto"
	apperrors "catalog/errors"
	"catalog/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidate()

var maxDiscountValue = decimal.NewFromInt(100)

func newValidate() *validator.Validate {
	v := validator.New()
	// báo lỗi theo tên json thay vì tên field Go
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// check chạy rule theo tag; thiếu trường trả về missing, sai giá trị trả về invalid
func check(s interface{}, missing, invalid apperrors.ErrorCode) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Validation(invalid, err.Error())
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperrors.Validation(missing, fmt.Sprintf("%s is required", fe.Field()))
		}
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return apperrors.Validation(invalid, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return apperrors.Validation(invalid, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
}

func ValidateRootCategory(req *dto.CreateRootCategoryRequest) error {
	return check(req, apperrors.ErrCodeMissingFields, apperrors.ErrCodeValidation)
}

func ValidateCategory(req *dto.CreateCategoryRequest) error {
	return check(req, apperrors.ErrCodeMissingFields, apperrors.ErrCodeValidation)
}

func ValidateInsertCategory(req *dto.InsertCategoryRequest) error {
	return check(req, apperrors.ErrCodeMissingFields, apperrors.ErrCodeValidation)
}

// ValidateDiscount: schema trước, sau đó các luật riêng của flash-sale
func ValidateDiscount(req *dto.CreateDiscountRequest, now time.Time) error {
	if err := check(req, apperrors.ErrCodeInvalidDiscountData, apperrors.ErrCodeInvalidDiscountData); err != nil {
		return err
	}
	if req.Value.IsNegative() || req.Value.GreaterThan(maxDiscountValue) {
		return apperrors.Validation(apperrors.ErrCodeInvalidDiscountData, "value must be between 0 and 100")
	}
	if req.MinimumPurchase.IsNegative() {
		return apperrors.Validation(apperrors.ErrCodeInvalidDiscountData, "minimum_purchase must not be negative")
	}
	if req.EndDate.Before(*req.StartDate) {
		return apperrors.Validation(apperrors.ErrCodeInvalidDiscountData, "end_date must not be before start_date")
	}
	if req.Type == models.DiscountFlashSale {
		return ValidateFlashSaleWindow(*req.StartDate, *req.EndDate, now)
	}
	return nil
}

// ValidateFlashSaleWindow: đúng giờ chẵn, kéo dài 1..10 giờ, bắt đầu sau now
func ValidateFlashSaleWindow(start, end, now time.Time) error {
	if !onTheHour(start) || !onTheHour(end) {
		return apperrors.Validation(apperrors.ErrCodeInvalidFlashSaleTime,
			"Flash sale must start and end exactly on the hour")
	}
	d := end.Sub(start)
	if d < constants.MinFlashSaleHours*time.Hour || d > constants.MaxFlashSaleHours*time.Hour {
		return apperrors.Validation(apperrors.ErrCodeInvalidFlashSaleDuration,
			fmt.Sprintf("Flash sale must last between %d and %d hours", constants.MinFlashSaleHours, constants.MaxFlashSaleHours))
	}
	if !start.After(now) {
		return apperrors.Validation(apperrors.ErrCodeInvalidFlashSaleStartTime,
			"Flash sale must start in the future")
	}
	return nil
}

func onTheHour(t time.Time) bool {
	return t.Minute() == 0 && t.Second() == 0
}

func ValidateUsage(req *dto.RecordUsageRequest) error {
	if err := check(req, apperrors.ErrCodeMissingFields, apperrors.ErrCodeValidation); err != nil {
		return err
	}
	if req.DiscountCost.IsNegative() {
		return apperrors.Validation(apperrors.ErrCodeValidation, "discount_cost must not be negative")
	}
	return nil
}

func ValidateProduct(req *dto.CreateProductRequest) error {
	if err := check(req, apperrors.ErrCodeMissingFields, apperrors.ErrCodeInvalidProductData); err != nil {
		return err
	}
	seen := make(map[string]bool, len(req.Variants))
	for _, v := range req.Variants {
		if v.Price.IsNegative() {
			return apperrors.Validation(apperrors.ErrCodeInvalidProductData, "price must not be negative")
		}
		if seen[v.SKU] {
			return apperrors.Validation(apperrors.ErrCodeInvalidProductData, fmt.Sprintf("duplicate sku %s", v.SKU))
		}
		seen[v.SKU] = true
	}
	return nil
}

func ValidateVariant(req *dto.CreateVariantRequest) error {
	return check(req, apperrors.ErrCodeMissingFields, apperrors.ErrCodeValidation)
}

func ValidateBulkVariants(req *dto.BulkCreateVariantRequest) error {
	return check(req, apperrors.ErrCodeMissingFields, apperrors.ErrCodeValidation)
}

func ValidateFeedback(req *dto.CreateFeedbackRequest) error {
	return check(req, apperrors.ErrCodeMissingFields, apperrors.ErrCodeInvalidRating)
}

func ValidateFilter(req *dto.FilterRequest) error {
	return check(req, apperrors.ErrCodeMissingFields, apperrors.ErrCodeValidation)
}
