package services

import (
	"context"
	"fmt"

	"catalog/dto"
	apperrors "catalog/errors"
	"catalog/models"
	"catalog/repositories"
	"catalog/services/logger"
	"catalog/validator"
)

type VariantService struct {
	store  repositories.VariantStore
	logger logger.Logger
}

type VariantServiceOptions struct {
	Store  repositories.VariantStore
	Logger logger.Logger
}

func NewVariantService(opts VariantServiceOptions) *VariantService {
	return &VariantService{store: opts.Store, logger: opts.Logger}
}

func (s *VariantService) Create(ctx context.Context, req *dto.CreateVariantRequest) (*models.Variant, error) {
	if err := validator.ValidateVariant(req); err != nil {
		return nil, err
	}
	v := toVariant(req)
	if err := s.store.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// BulkCreate ghi cả lô trong một lệnh insert; SKU trùng trong lô bị từ chối trước khi ghi
func (s *VariantService) BulkCreate(ctx context.Context, req *dto.BulkCreateVariantRequest) ([]models.Variant, error) {
	if err := validator.ValidateBulkVariants(req); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(req.Variants))
	list := make([]models.Variant, 0, len(req.Variants))
	for i := range req.Variants {
		item := &req.Variants[i]
		if seen[item.SKU] {
			return nil, apperrors.Validation(apperrors.ErrCodeVariantExists, fmt.Sprintf("duplicate sku %s in request", item.SKU))
		}
		seen[item.SKU] = true
		list = append(list, *toVariant(item))
	}
	if err := s.store.CreateBatch(ctx, list); err != nil {
		return nil, err
	}
	s.logger.Info("created %d variants", len(list))
	return list, nil
}

func (s *VariantService) GetBySKU(ctx context.Context, sku string) (*models.Variant, error) {
	v, err := s.store.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeVariantNotFound, "Variant not found")
	}
	return v, nil
}

// ByCategory gom variant theo group, giữ thứ tự xuất hiện và bỏ trường categories
func (s *VariantService) ByCategory(ctx context.Context, categoryID string) ([]dto.VariantGroup, error) {
	list, err := s.store.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	groups := []dto.VariantGroup{}
	index := map[string]int{}
	for _, v := range list {
		i, ok := index[v.Group]
		if !ok {
			i = len(groups)
			index[v.Group] = i
			groups = append(groups, dto.VariantGroup{Group: v.Group})
		}
		groups[i].Variants = append(groups[i].Variants, dto.VariantItem{SKU: v.SKU, Variant: v.Variant})
	}
	return groups, nil
}

func (s *VariantService) ByGroup(ctx context.Context, group string) ([]models.Variant, error) {
	return s.store.ListByGroup(ctx, group)
}

func (s *VariantService) Update(ctx context.Context, sku string, req *dto.UpdateVariantRequest) (*models.Variant, error) {
	patch := &models.Variant{}
	var columns []string
	if req.Group != nil {
		patch.Group = *req.Group
		columns = append(columns, "variant_group")
	}
	if req.Categories != nil {
		patch.Categories = *req.Categories
		columns = append(columns, "categories")
	}
	if req.Variant != nil {
		patch.Variant = *req.Variant
		columns = append(columns, "variant")
	}
	if len(columns) == 0 {
		return nil, apperrors.Validation(apperrors.ErrCodeMissingFields, "nothing to update")
	}
	columns = append(columns, "updated_at")

	affected, err := s.store.UpdateBySKU(ctx, sku, patch, columns...)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apperrors.NotFound(apperrors.ErrCodeVariantNotFound, "Variant not found")
	}
	return s.GetBySKU(ctx, sku)
}

func (s *VariantService) DeleteGroup(ctx context.Context, group string) (int64, error) {
	affected, err := s.store.DeleteGroup(ctx, group)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, apperrors.NotFound(apperrors.ErrCodeVariantNotFound, "Variant group not found")
	}
	return affected, nil
}

func (s *VariantService) Delete(ctx context.Context, sku string) error {
	affected, err := s.store.DeleteBySKU(ctx, sku)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFound(apperrors.ErrCodeVariantNotFound, "Variant not found")
	}
	return nil
}

func toVariant(req *dto.CreateVariantRequest) *models.Variant {
	return &models.Variant{
		SKU:        req.SKU,
		Group:      req.Group,
		Categories: models.StringList(req.Categories),
		Variant:    req.Variant,
	}
}
