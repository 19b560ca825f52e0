package services

import (
	"context"
	"fmt"
	"time"

	"catalog/constants"
	"catalog/dto"
	apperrors "catalog/errors"
	"catalog/models"
	"catalog/repositories"
	"catalog/services/logger"
	"catalog/utils"
	"catalog/validator"
)

const categoryCacheTTL = 10 * time.Minute

type CategoryService struct {
	store  repositories.CategoryStore
	cache  *Cache
	logger logger.Logger
}

type CategoryServiceOptions struct {
	Store  repositories.CategoryStore
	Cache  *Cache
	Logger logger.Logger
}

func NewCategoryService(opts CategoryServiceOptions) *CategoryService {
	return &CategoryService{
		store:  opts.Store,
		cache:  opts.Cache,
		logger: opts.Logger,
	}
}

// CreateRoot tạo một danh mục gốc (parent_id = nil)
func (s *CategoryService) CreateRoot(ctx context.Context, req *dto.CreateRootCategoryRequest) (*models.Category, error) {
	if err := validator.ValidateRootCategory(req); err != nil {
		return nil, err
	}
	level := 0
	if req.Level != nil {
		level = *req.Level
	}
	c := &models.Category{
		Name:        req.Name,
		Slug:        utils.CreateSlug(req.Name),
		ImageURI:    req.ImageURI,
		Description: req.Description,
		Level:       level,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("category %s created as root", c.ID)
	return c, nil
}

// CreateBranch gắn một nút lá mới dưới parent; level do caller cung cấp
func (s *CategoryService) CreateBranch(ctx context.Context, req *dto.CreateCategoryRequest) (*models.Category, error) {
	if err := validator.ValidateCategory(req); err != nil {
		return nil, err
	}
	parent, err := s.store.FindByID(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeParentNotFound, "Parent category not found")
	}

	c := newCategory(req)
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("category %s created under %s", c.ID, parent.ID)
	return c, nil
}

// InsertIntoHierarchy chèn nút mới giữa parent và children_id, dời cả cây con của children_id
func (s *CategoryService) InsertIntoHierarchy(ctx context.Context, req *dto.InsertCategoryRequest) (*models.Category, error) {
	if err := validator.ValidateInsertCategory(req); err != nil {
		return nil, err
	}

	var created *models.Category
	err := s.store.Transaction(ctx, func(tx repositories.CategoryStore) error {
		child, err := tx.FindByID(ctx, req.ChildrenID)
		if err != nil {
			return err
		}
		if child == nil {
			return apperrors.NotFound(apperrors.ErrCodeChildNotFound, "Child category not found")
		}
		parent, err := tx.FindByID(ctx, req.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return apperrors.NotFound(apperrors.ErrCodeParentNotFound, "Parent category not found")
		}
		if err := ensureNotDescendant(ctx, tx, parent.ID, child.ID); err != nil {
			return err
		}

		node := newCategory(&req.CreateCategoryRequest)
		if err := tx.Create(ctx, node); err != nil {
			return err
		}

		delta := node.Level - child.Level + 1
		if err := tx.SetParent(ctx, child.ID, &node.ID, child.Level+delta); err != nil {
			return err
		}
		if err := shiftSubtree(ctx, tx, child.ID, delta); err != nil {
			return err
		}
		created = node
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("category %s inserted above %s", created.ID, req.ChildrenID)
	return created, nil
}

// Update chỉ tính lại slug khi có name; luôn đóng dấu updated_at
func (s *CategoryService) Update(ctx context.Context, id string, req *dto.UpdateCategoryRequest) (*models.Category, error) {
	fields := map[string]interface{}{"updated_at": time.Now()}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperrors.Validation(apperrors.ErrCodeValidation, "name must not be empty")
		}
		fields["name"] = *req.Name
		fields["slug"] = utils.CreateSlug(*req.Name)
	}
	if req.ImageURI != nil {
		fields["image_uri"] = *req.ImageURI
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	affected, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apperrors.NotFound(apperrors.ErrCodeCategoryNotFound, "Category not found")
	}
	s.invalidate(ctx)
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeCategoryNotFound, "Category not found")
	}
	return c, nil
}

// Delete đưa các con trực tiếp lên parent của nút bị xóa (kèm dời level cả cây con),
// xóa nút, rồi quét xóa từ dưới lên mọi nút còn trỏ vào nút đã xóa
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	err := s.store.Transaction(ctx, func(tx repositories.CategoryStore) error {
		node, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if node == nil {
			return apperrors.NotFound(apperrors.ErrCodeCategoryNotFound, "Category not found")
		}

		children, err := tx.FindChildren(ctx, id)
		if err != nil {
			return err
		}
		for _, child := range children {
			delta := node.Level - child.Level
			if err := tx.SetParent(ctx, child.ID, node.ParentID, child.Level+delta); err != nil {
				return err
			}
			if err := shiftSubtree(ctx, tx, child.ID, delta); err != nil {
				return err
			}
		}

		if _, err := tx.Delete(ctx, id); err != nil {
			return err
		}

		remaining, err := collectDescendants(ctx, tx, id)
		if err != nil {
			return err
		}
		for i := len(remaining) - 1; i >= 0; i-- {
			if _, err := tx.Delete(ctx, remaining[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("category %s deleted", id)
	return nil
}

// AncestorPath đi ngược parent_id lên gốc, trả về thứ tự gốc -> lá; dừng im lặng khi mất nút cha
func (s *CategoryService) AncestorPath(ctx context.Context, id string) ([]models.CategoryRef, error) {
	key := constants.CacheKeyCategoryPath + id
	var cached []models.CategoryRef
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	path := []models.CategoryRef{}
	visited := map[string]bool{}
	cur := id
	for cur != "" {
		if visited[cur] {
			s.logger.Error("category cycle detected at %s while resolving path of %s", cur, id)
			break
		}
		visited[cur] = true

		c, err := s.store.FindByID(ctx, cur)
		if err != nil {
			return nil, err
		}
		if c == nil {
			break
		}
		path = append(path, models.CategoryRef{CategoryID: c.ID, CategoryName: c.Name})
		if c.ParentID == nil {
			break
		}
		cur = *c.ParentID
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	s.cache.Set(ctx, key, path, categoryCacheTTL)
	return path, nil
}

func (s *CategoryService) ListByLevel(ctx context.Context, level int) ([]models.Category, error) {
	key := fmt.Sprintf("%s%d", constants.CacheKeyCategoryLevel, level)
	var cached []models.Category
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	list, err := s.store.FindByLevel(ctx, level)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, list, categoryCacheTTL)
	return list, nil
}

func (s *CategoryService) ListChildren(ctx context.Context, parentID string) ([]models.Category, error) {
	return s.store.FindChildren(ctx, parentID)
}

func (s *CategoryService) invalidate(ctx context.Context) {
	s.cache.DeletePattern(ctx, constants.CacheKeyCategoryAll)
}

func newCategory(req *dto.CreateCategoryRequest) *models.Category {
	parentID := req.ParentID
	return &models.Category{
		Name:        req.Name,
		Slug:        utils.CreateSlug(req.Name),
		ImageURI:    req.ImageURI,
		Description: req.Description,
		ParentID:    &parentID,
		Level:       *req.Level,
	}
}

// collectDescendants duyệt theo chiều rộng bằng worklist; thứ tự trả về là cha trước con
func collectDescendants(ctx context.Context, store repositories.CategoryStore, rootID string) ([]models.Category, error) {
	var out []models.Category
	visited := map[string]bool{rootID: true}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		children, err := store.FindChildren(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if visited[c.ID] {
				return nil, apperrors.OperationFailed(apperrors.ErrCodeCategoryCycle,
					fmt.Sprintf("Category hierarchy contains a cycle at %s", c.ID))
			}
			visited[c.ID] = true
			out = append(out, c)
			queue = append(queue, c.ID)
		}
	}
	return out, nil
}

// shiftSubtree cộng delta vào level của mọi hậu duệ (không gồm rootID), từng nút một
func shiftSubtree(ctx context.Context, store repositories.CategoryStore, rootID string, delta int) error {
	if delta == 0 {
		return nil
	}
	descendants, err := collectDescendants(ctx, store, rootID)
	if err != nil {
		return err
	}
	for _, d := range descendants {
		if err := store.ShiftLevel(ctx, d.ID, delta); err != nil {
			return err
		}
	}
	return nil
}

// ensureNotDescendant chặn việc chèn làm parent nằm trong cây con của child
func ensureNotDescendant(ctx context.Context, store repositories.CategoryStore, parentID, childID string) error {
	visited := map[string]bool{}
	cur := parentID
	for cur != "" && !visited[cur] {
		if cur == childID {
			return apperrors.OperationFailed(apperrors.ErrCodeCategoryCycle,
				"Parent category lies inside the subtree of the child")
		}
		visited[cur] = true
		c, err := store.FindByID(ctx, cur)
		if err != nil {
			return err
		}
		if c == nil || c.ParentID == nil {
			return nil
		}
		cur = *c.ParentID
	}
	return nil
}
