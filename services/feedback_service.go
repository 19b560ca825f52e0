package services

import (
	"context"
	"fmt"
	"strings"
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

// UserLookup hỏi user service tên hiển thị của một người dùng
type UserLookup interface {
	Username(ctx context.Context, userID string) (string, error)
}

type FeedbackService struct {
	feedbacks repositories.FeedbackStore
	products  repositories.ProductStore
	users     UserLookup
	notifier  notification.Service
	runner    *commands.Runner
	logger    logger.Logger
	now       func() time.Time
}

type FeedbackServiceOptions struct {
	Feedbacks repositories.FeedbackStore
	Products  repositories.ProductStore
	Users     UserLookup
	Notifier  notification.Service
	Runner    *commands.Runner
	Logger    logger.Logger
	Clock     func() time.Time
}

func NewFeedbackService(opts FeedbackServiceOptions) *FeedbackService {
	s := &FeedbackService{
		feedbacks: opts.Feedbacks,
		products:  opts.Products,
		users:     opts.Users,
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

// Create: seller_id lấy từ sản phẩm, không tin dữ liệu client gửi lên
func (s *FeedbackService) Create(ctx context.Context, customerID string, req *dto.CreateFeedbackRequest) (*models.Feedback, error) {
	if err := validator.ValidateFeedback(req); err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeProductNotFound, "Product not found")
	}

	f := &models.Feedback{
		CustomerID: customerID,
		ProductID:  p.ID,
		SellerID:   p.SellerID,
		Rating:     *req.Rating,
		Comment:    req.Comment,
		Images:     models.StringList(req.Images),
	}
	if err := s.feedbacks.Create(ctx, f); err != nil {
		return nil, err
	}

	s.runner.Run(ctx, notifyCommand(s.notifier, p.SellerID, constants.RoleSeller, constants.FeedbackNotification,
		"New Feedback", fmt.Sprintf("Product %s received a %d-star feedback", p.Name, f.Rating), "/feedback"))
	return f, nil
}

// Reply chỉ seller của sản phẩm được trả lời
func (s *FeedbackService) Reply(ctx context.Context, sellerID, id string, req *dto.ReplyFeedbackRequest) (*models.Feedback, error) {
	if strings.TrimSpace(req.Comment) == "" {
		return nil, apperrors.Validation(apperrors.ErrCodeMissingComment, "comment is required")
	}
	f, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.SellerID != sellerID {
		return nil, apperrors.Unauthorized("Only the product's seller can reply")
	}

	at := s.now()
	affected, err := s.feedbacks.SetReply(ctx, id, req.Comment, at)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apperrors.NotFound(apperrors.ErrCodeFeedbackNotFound, "Feedback not found")
	}
	f.ReplyComment, f.RepliedAt = req.Comment, &at

	s.runner.Run(ctx, notifyCommand(s.notifier, f.CustomerID, constants.RoleCustomer, constants.FeedbackNotification,
		"Seller Replied", "The seller has replied to your feedback", "/product/"+f.ProductID))
	return f, nil
}

// Delete: khách viết feedback hoặc seller của sản phẩm
func (s *FeedbackService) Delete(ctx context.Context, userID, id string) error {
	f, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if f.CustomerID != userID && f.SellerID != userID {
		return apperrors.Unauthorized("You cannot delete this feedback")
	}
	affected, err := s.feedbacks.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.OperationFailed(apperrors.ErrCodeDeleteFailed, "Failed to delete feedback")
	}
	return nil
}

func (s *FeedbackService) ByProduct(ctx context.Context, productID string, q dto.PageQuery) ([]models.Feedback, int64, error) {
	_, limit, offset := q.Normalize()
	list, total, err := s.feedbacks.ListByProduct(ctx, productID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	s.attachUsernames(ctx, list)
	return list, total, nil
}

func (s *FeedbackService) BySeller(ctx context.Context, sellerID string, q dto.SellerFeedbackQuery) ([]models.Feedback, int64, error) {
	_, limit, offset := q.Normalize()
	filter := repositories.FeedbackFilter{
		SellerID:  sellerID,
		ProductID: q.ProductID,
		Rating:    q.Rating,
		HasReply:  q.HasReply,
	}
	list, total, err := s.feedbacks.ListBySeller(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	s.attachUsernames(ctx, list)
	return list, total, nil
}

func (s *FeedbackService) Rating(ctx context.Context, productID string) (*models.RatingSummary, error) {
	return s.feedbacks.RatingSummary(ctx, productID)
}

func (s *FeedbackService) find(ctx context.Context, id string) (*models.Feedback, error) {
	f, err := s.feedbacks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeFeedbackNotFound, "Feedback not found")
	}
	return f, nil
}

// attachUsernames hỏi tên từng khách một lần; lỗi chỉ được log
func (s *FeedbackService) attachUsernames(ctx context.Context, list []models.Feedback) {
	if s.users == nil {
		return
	}
	names := map[string]string{}
	for i := range list {
		id := list[i].CustomerID
		name, ok := names[id]
		if !ok {
			var err error
			name, err = s.users.Username(ctx, id)
			if err != nil {
				s.logger.Error("lookup username of %s: %v", id, err)
			}
			names[id] = name
		}
		list[i].Username = name
	}
}
