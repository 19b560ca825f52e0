package services

import (
	"context"
	"time"

	"catalog/constants"
	"catalog/dto"
	apperrors "catalog/errors"
	"catalog/models"
	"catalog/repositories"
	"catalog/services/logger"
	"catalog/validator"
)

type DiscountUsageService struct {
	usages    repositories.DiscountUsageStore
	discounts repositories.DiscountStore
	logger    logger.Logger
	now       func() time.Time
}

type DiscountUsageServiceOptions struct {
	Usages    repositories.DiscountUsageStore
	Discounts repositories.DiscountStore
	Logger    logger.Logger
	Clock     func() time.Time
}

func NewDiscountUsageService(opts DiscountUsageServiceOptions) *DiscountUsageService {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &DiscountUsageService{
		usages:    opts.Usages,
		discounts: opts.Discounts,
		logger:    opts.Logger,
		now:       now,
	}
}

// RecordUsage kiểm tra hạn mức của khách, tăng current_uses có điều kiện, rồi ghi sổ.
// Hai bước đếm và ghi không nằm trong cùng transaction: hai lượt đồng thời của cùng
// một khách sát hạn mức vẫn có thể cùng lọt qua bước đếm.
func (s *DiscountUsageService) RecordUsage(ctx context.Context, customerID string, req *dto.RecordUsageRequest) (*models.DiscountUsage, error) {
	if err := validator.ValidateUsage(req); err != nil {
		return nil, err
	}
	d, err := s.discounts.FindByID(ctx, req.DiscountID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeDiscountNotFound, "Discount not found")
	}

	now := s.now()
	if !d.IsActive || d.CurrentStatus(now) != models.StatusOngoing {
		return nil, apperrors.OperationFailed(apperrors.ErrCodeInvalidDiscount, "Discount is not currently usable")
	}
	if len(d.ApplicableProducts) > 0 && !d.ApplicableProducts.Contains(req.ProductID) {
		return nil, apperrors.OperationFailed(apperrors.ErrCodeInvalidDiscount, "Discount does not apply to this product")
	}

	if d.CustomerUsageLimit > 0 {
		used, err := s.usages.CountByCustomer(ctx, customerID, d.ID)
		if err != nil {
			return nil, err
		}
		if used >= int64(d.CustomerUsageLimit) {
			return nil, apperrors.OperationFailed(apperrors.ErrCodeUsageLimitExceeded, "Customer usage limit reached")
		}
	}

	affected, err := s.discounts.IncrementUses(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apperrors.OperationFailed(apperrors.ErrCodeUsageExhausted, "Discount has no uses left")
	}

	usage := &models.DiscountUsage{
		CustomerID:   customerID,
		DiscountID:   d.ID,
		ProductID:    req.ProductID,
		DiscountCost: *req.DiscountCost,
		Year:         now.Year(),
		Month:        int(now.Month()),
		AppliedAt:    now,
	}
	if err := s.usages.Create(ctx, usage); err != nil {
		s.logger.Error("usage of discount %s counted but ledger insert failed: %v", d.ID, err)
		return nil, err
	}
	return usage, nil
}

// ListByDiscount trả về các lượt dùng gần nhất; chỉ seller sở hữu được xem
func (s *DiscountUsageService) ListByDiscount(ctx context.Context, sellerID, discountID string) ([]models.DiscountUsage, error) {
	if err := s.checkOwner(ctx, sellerID, discountID); err != nil {
		return nil, err
	}
	return s.usages.ListByDiscount(ctx, discountID, constants.UsageListLimit)
}

func (s *DiscountUsageService) ListByProductAndCustomer(ctx context.Context, productID, customerID string) ([]models.DiscountUsage, error) {
	return s.usages.ListByProductAndCustomer(ctx, productID, customerID)
}

func (s *DiscountUsageService) Summary(ctx context.Context, sellerID, discountID string) ([]models.UsageSummary, error) {
	if err := s.checkOwner(ctx, sellerID, discountID); err != nil {
		return nil, err
	}
	return s.usages.SummaryByDiscount(ctx, discountID)
}

func (s *DiscountUsageService) checkOwner(ctx context.Context, sellerID, discountID string) error {
	d, err := s.discounts.FindByID(ctx, discountID)
	if err != nil {
		return err
	}
	if d == nil {
		return apperrors.NotFound(apperrors.ErrCodeDiscountNotFound, "Discount not found")
	}
	if d.SellerID != sellerID {
		return apperrors.Unauthorized("You are not the owner of this discount")
	}
	return nil
}
