package services

import (
	"context"
	"fmt"
	"time"

	"catalog/commands"
	"catalog/constants"
	"catalog/dto"
	apperrors "catalog/errors"
	"catalog/models"
	"catalog/repositories"
	"catalog/services/logger"
	"catalog/services/notification"
	"catalog/validator"
)

type DiscountService struct {
	discounts repositories.DiscountStore
	products  repositories.ProductStore
	logs      repositories.ProductLogStore
	cache     *Cache
	notifier  notification.Service
	runner    *commands.Runner
	logger    logger.Logger
	now       func() time.Time
}

type DiscountServiceOptions struct {
	Discounts repositories.DiscountStore
	Products  repositories.ProductStore
	Logs      repositories.ProductLogStore
	Cache     *Cache
	Notifier  notification.Service
	Runner    *commands.Runner
	Logger    logger.Logger
	Clock     func() time.Time
}

func NewDiscountService(opts DiscountServiceOptions) *DiscountService {
	s := &DiscountService{
		discounts: opts.Discounts,
		products:  opts.Products,
		logs:      opts.Logs,
		cache:     opts.Cache,
		notifier:  opts.Notifier,
		runner:    opts.Runner,
		logger:    opts.Logger,
		now:       opts.Clock,
	}
	if s.notifier == nil {
		s.notifier = notification.NopService{}
	}
	if s.runner == nil {
		s.runner = commands.NewRunner(s.logger, 0)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create kiểm tra dữ liệu, tính status ban đầu rồi lưu; sản phẩm không thuộc seller bị bỏ qua
func (s *DiscountService) Create(ctx context.Context, sellerID string, req *dto.CreateDiscountRequest) (*models.Discount, error) {
	now := s.now()
	if err := validator.ValidateDiscount(req, now); err != nil {
		return nil, err
	}

	limit := constants.DefaultUsageLimit
	if req.CustomerUsageLimit != nil {
		limit = *req.CustomerUsageLimit
	}
	applicable, err := s.ownedProducts(ctx, sellerID, req.ApplicableProducts)
	if err != nil {
		return nil, err
	}

	d := &models.Discount{
		SellerID:           sellerID,
		Code:               req.Code,
		Type:               req.Type,
		Value:              *req.Value,
		MinimumPurchase:    *req.MinimumPurchase,
		MaxUses:            *req.MaxUses,
		CustomerUsageLimit: limit,
		ApplicableProducts: applicable,
		IsActive:           true,
		StartDate:          *req.StartDate,
		EndDate:            *req.EndDate,
	}
	d.Refresh(now)
	if err := s.discounts.Create(ctx, d); err != nil {
		return nil, err
	}

	for _, pid := range applicable {
		if _, err := s.products.PlaceInBucket(ctx, pid, d.Status, d.ID); err != nil {
			s.logger.Error("mirror discount %s on product %s: %v", d.ID, pid, err)
		}
		s.cache.Delete(ctx, constants.CacheKeyProduct+pid)
	}

	s.runner.Run(ctx, s.notifySeller(sellerID, "New Discount Created",
		fmt.Sprintf("You have created a new discount %s", d.Code)))
	return d, nil
}

// GetByID luôn trả về status tính lại tại thời điểm đọc
func (s *DiscountService) GetByID(ctx context.Context, id string) (*models.Discount, error) {
	d, err := s.discounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeDiscountNotFound, "Discount not found")
	}
	return d.Refresh(s.now()), nil
}

func (s *DiscountService) ListBySeller(ctx context.Context, sellerID string) ([]models.Discount, error) {
	list, err := s.discounts.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range list {
		list[i].Refresh(now)
	}
	return list, nil
}

// Toggle đảo is_active bằng cập nhật có điều kiện
func (s *DiscountService) Toggle(ctx context.Context, sellerID, id string) (*models.Discount, error) {
	d, err := s.CheckOwner(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	affected, err := s.discounts.ToggleActive(ctx, id, d.IsActive)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apperrors.OperationFailed(apperrors.ErrCodeToggleFailed, "Failed to toggle discount status")
	}
	d.IsActive = !d.IsActive

	state := "deactivated"
	if d.IsActive {
		state = "activated"
	}
	s.runner.Run(ctx, s.notifySeller(sellerID, "Discount Status Changed",
		fmt.Sprintf("Discount %s has been %s", d.Code, state)))
	return d.Refresh(s.now()), nil
}

// RefreshAllStatuses chuyển các discount đã lệch status và dời bucket của sản phẩm tương ứng
func (s *DiscountService) RefreshAllStatuses(ctx context.Context) (*dto.RefreshResult, error) {
	now := s.now()
	stale, err := s.discounts.ListStale(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &dto.RefreshResult{}
	for _, d := range stale {
		to := d.CurrentStatus(now)
		if to == d.Status {
			continue
		}
		affected, err := s.discounts.SetStatus(ctx, d.ID, d.Status, to)
		if err != nil {
			return result, err
		}
		if affected == 0 {
			continue
		}
		switch to {
		case models.StatusOngoing:
			result.Ongoing++
		case models.StatusExpired:
			result.Expired++
		}
		for _, pid := range d.ApplicableProducts {
			if err := s.products.MoveBucket(ctx, pid, d.ID, d.Status, to); err != nil {
				s.logger.Error("move discount %s on product %s: %v", d.ID, pid, err)
				continue
			}
			s.cache.Delete(ctx, constants.CacheKeyProduct+pid)
		}
	}
	if result.Ongoing+result.Expired > 0 {
		s.logger.Info("discount refresh: %d ongoing, %d expired", result.Ongoing, result.Expired)
	}
	return result, nil
}

// Apply gắn discount vào sản phẩm; bucket chọn theo status tính lại ngay lúc ghi
func (s *DiscountService) Apply(ctx context.Context, sellerID, discountID, productID string) (*models.Discount, error) {
	d, err := s.CheckOwner(ctx, sellerID, discountID)
	if err != nil {
		return nil, err
	}
	if !d.IsActive || d.CurrentStatus(s.now()) == models.StatusExpired {
		return nil, apperrors.OperationFailed(apperrors.ErrCodeInvalidDiscount, "Discount is inactive or expired")
	}
	if err := s.checkProductOwner(ctx, sellerID, productID); err != nil {
		return nil, err
	}

	updated, err := s.discounts.AddApplicableProduct(ctx, discountID, productID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeDiscountNotFound, "Discount not found")
	}
	updated.Refresh(s.now())
	if _, err := s.products.PlaceInBucket(ctx, productID, updated.Status, discountID); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, constants.CacheKeyProduct+productID)

	s.runner.Run(ctx,
		commands.NewWriteProductLogCommand(s.logs, productID, "Discount Applied",
			fmt.Sprintf("Discount %s was applied to this product", updated.Code)),
		s.notifySeller(sellerID, "Discount Applied",
			fmt.Sprintf("Discount %s has been applied to product %s", updated.Code, productID)),
	)
	return updated, nil
}

// Remove gỡ discount khỏi sản phẩm, xóa id ở mọi bucket
func (s *DiscountService) Remove(ctx context.Context, sellerID, discountID, productID string) (*models.Discount, error) {
	d, err := s.CheckOwner(ctx, sellerID, discountID)
	if err != nil {
		return nil, err
	}
	if d.CurrentStatus(s.now()) == models.StatusExpired {
		return nil, apperrors.OperationFailed(apperrors.ErrCodeExpiredDiscount, "Discount has expired")
	}

	updated, err := s.discounts.RemoveApplicableProduct(ctx, discountID, productID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeDiscountNotFound, "Discount not found")
	}
	if _, err := s.products.RemoveFromBuckets(ctx, productID, discountID); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, constants.CacheKeyProduct+productID)

	s.runner.Run(ctx,
		commands.NewWriteProductLogCommand(s.logs, productID, "Discount Removed",
			fmt.Sprintf("Discount %s was removed from this product", updated.Code)),
		s.notifySeller(sellerID, "Discount Removed",
			fmt.Sprintf("Discount %s has been removed from product %s", updated.Code, productID)),
	)
	return updated.Refresh(s.now()), nil
}

// Delete xóa discount rồi gỡ khỏi bucket các sản phẩm (best-effort)
func (s *DiscountService) Delete(ctx context.Context, sellerID, discountID string) error {
	d, err := s.CheckOwner(ctx, sellerID, discountID)
	if err != nil {
		return err
	}
	affected, err := s.discounts.Delete(ctx, discountID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.OperationFailed(apperrors.ErrCodeDeleteFailed, "Failed to delete discount")
	}

	for _, pid := range d.ApplicableProducts {
		if _, err := s.products.RemoveFromBuckets(ctx, pid, discountID); err != nil {
			s.logger.Error("detach discount %s from product %s: %v", discountID, pid, err)
		}
		s.cache.Delete(ctx, constants.CacheKeyProduct+pid)
	}
	s.runner.Run(ctx, s.notifySeller(sellerID, "Discount Deleted",
		fmt.Sprintf("Discount %s has been deleted", d.Code)))
	return nil
}

// CheckOwner: 404 nếu không có discount, 403 nếu người gọi không phải seller sở hữu
func (s *DiscountService) CheckOwner(ctx context.Context, sellerID, discountID string) (*models.Discount, error) {
	d, err := s.discounts.FindByID(ctx, discountID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeDiscountNotFound, "Discount not found")
	}
	if d.SellerID != sellerID {
		return nil, apperrors.Unauthorized("You are not the owner of this discount")
	}
	return d, nil
}

func (s *DiscountService) checkProductOwner(ctx context.Context, sellerID, productID string) error {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperrors.NotFound(apperrors.ErrCodeProductNotFound, "Product not found")
	}
	if p.SellerID != sellerID {
		return apperrors.Unauthorized("You are not the owner of this product")
	}
	return nil
}

func (s *DiscountService) ownedProducts(ctx context.Context, sellerID string, ids []string) (models.StringList, error) {
	out := models.StringList{}
	if len(ids) == 0 {
		return out, nil
	}
	products, err := s.products.FindByIDs(ctx, ids, false)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.SellerID == sellerID {
			out, _ = out.With(p.ID)
		}
	}
	return out, nil
}

func (s *DiscountService) notifySeller(sellerID, title, content string) commands.Command {
	return notifyCommand(s.notifier, sellerID, constants.RoleSeller, constants.DiscountNotification, title, content, "/discount")
}
