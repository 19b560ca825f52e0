package services

import (
	"context"
	"encoding/json"
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
	"catalog/utils"
	"catalog/validator"

	"github.com/shopspring/decimal"
)

const productCacheTTL = constants.ProductCacheMinute * time.Minute

// CategoryPathResolver trả về đường dẫn tổ tiên của một danh mục
type CategoryPathResolver interface {
	AncestorPath(ctx context.Context, id string) ([]models.CategoryRef, error)
}

type ProductService struct {
	products   repositories.ProductStore
	discounts  repositories.DiscountStore
	usages     repositories.DiscountUsageStore
	feedbacks  repositories.FeedbackStore
	logs       repositories.ProductLogStore
	categories CategoryPathResolver
	cache      *Cache
	search     *SearchIndex
	events     notification.Publisher
	notifier   notification.Service
	runner     *commands.Runner
	logger     logger.Logger
	now        func() time.Time
}

type ProductServiceOptions struct {
	Products   repositories.ProductStore
	Discounts  repositories.DiscountStore
	Usages     repositories.DiscountUsageStore
	Feedbacks  repositories.FeedbackStore
	Logs       repositories.ProductLogStore
	Categories CategoryPathResolver
	Cache      *Cache
	Search     *SearchIndex
	Events     notification.Publisher
	Notifier   notification.Service
	Runner     *commands.Runner
	Logger     logger.Logger
	Clock      func() time.Time
}

func NewProductService(opts ProductServiceOptions) *ProductService {
	s := &ProductService{
		products:   opts.Products,
		discounts:  opts.Discounts,
		usages:     opts.Usages,
		feedbacks:  opts.Feedbacks,
		logs:       opts.Logs,
		categories: opts.Categories,
		cache:      opts.Cache,
		search:     opts.Search,
		events:     opts.Events,
		notifier:   opts.Notifier,
		runner:     opts.Runner,
		logger:     opts.Logger,
		now:        opts.Clock,
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

func (s *ProductService) Create(ctx context.Context, sellerID string, req *dto.CreateProductRequest) (*models.Product, error) {
	if err := validator.ValidateProduct(req); err != nil {
		return nil, err
	}

	categories, err := s.resolveCategories(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	slug, err := s.uniqueSlug(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		SellerID:    sellerID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Origin:      req.Origin,
		Address:     req.Address,
		Images:      models.StringList(req.Images),
		Tags:        models.StringList(req.Tags),
		Categories:  categories,
		IsActive:    true,
	}
	for _, v := range req.Variants {
		p.Variants = append(p.Variants, models.ProductVariant{SKU: v.SKU, Price: *v.Price, Stock: v.Stock})
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}

	cmds := []commands.Command{
		commands.NewWriteProductLogCommand(s.logs, p.ID, "Product Created", fmt.Sprintf("Product %s was created", p.Name)),
		s.notifySeller(sellerID, "New Product Created", fmt.Sprintf("You have created a new product %s", p.Name), "/product/"+p.ID),
	}
	if s.events != nil {
		cmds = append(cmds, commands.NewPublishEventCommand(s.events, "product_created", p.ID, dto.ProductCreatedEvent{
			ProductID: p.ID,
			SellerID:  p.SellerID,
			Name:      p.Name,
			CreatedAt: p.CreatedAt,
		}))
	}
	s.runner.Run(ctx, cmds...)
	return p, nil
}

// GetByID đọc bản ghi gốc qua cache, sau đó gắn discount_value và rating
func (s *ProductService) GetByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	ongoing, err := s.ongoingDiscounts(ctx, p)
	if err != nil {
		return nil, err
	}
	p.DiscountValue = maxDiscountValue(ongoing)

	summary, err := s.feedbacks.RatingSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Rating = summary.Average
	return p, nil
}

func (s *ProductService) loadProduct(ctx context.Context, id string) (*models.Product, error) {
	key := constants.CacheKeyProduct + id
	var cached models.Product
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeProductNotFound, "Product not found")
	}
	s.cache.Set(ctx, key, p, productCacheTTL)
	return p, nil
}

// ListBySeller: chế độ minimum chỉ trả id, name, slug, ảnh đầu tiên
func (s *ProductService) ListBySeller(ctx context.Context, sellerID string, minimum bool) ([]dto.SellerProduct, error) {
	list, err := s.products.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SellerProduct, 0, len(list))
	for i := range list {
		p := &list[i]
		row := dto.SellerProduct{ID: p.ID, Name: p.Name, Slug: p.Slug}
		if len(p.Images) > 0 {
			row.Image = p.Images[0]
		}
		if !minimum {
			stock, active, sold := p.TotalStock(), p.IsActive, p.SoldCount
			row.PriceRange = p.PriceRange()
			row.TotalStock = &stock
			row.IsActive = &active
			row.SoldCount = &sold
		}
		out = append(out, row)
	}
	return out, nil
}

// ListRawBySeller dùng cho RPC, trả nguyên bản ghi
func (s *ProductService) ListRawBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	return s.products.ListBySeller(ctx, sellerID)
}

// DiscountsForProduct trả các discount đang chạy; với khách hàng, bỏ các mã đã dùng hết lượt
func (s *ProductService) DiscountsForProduct(ctx context.Context, productID, customerID string) ([]models.Discount, error) {
	p, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	ongoing, err := s.ongoingDiscounts(ctx, p)
	if err != nil {
		return nil, err
	}
	if customerID == "" || len(ongoing) == 0 {
		return ongoing, nil
	}

	ids := make([]string, 0, len(ongoing))
	for _, d := range ongoing {
		ids = append(ids, d.ID)
	}
	used, err := s.usages.CountsByCustomer(ctx, customerID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.Discount, 0, len(ongoing))
	for _, d := range ongoing {
		if d.CustomerUsageLimit > 0 && used[d.ID] >= int64(d.CustomerUsageLimit) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// ongoingDiscounts tính lại status từ thời gian, không tin vào bucket đã lưu
func (s *ProductService) ongoingDiscounts(ctx context.Context, p *models.Product) ([]models.Discount, error) {
	ids := append(append(models.StringList{}, p.UpcomingDiscounts...), p.OngoingDiscounts...)
	if len(ids) == 0 {
		return []models.Discount{}, nil
	}
	list, err := s.discounts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]models.Discount, 0, len(list))
	for _, d := range list {
		if d.IsActive && d.Refresh(now).Status == models.StatusOngoing {
			out = append(out, d)
		}
	}
	return out, nil
}

// FlashSale liệt kê sản phẩm đang bán có flash-sale đang diễn ra
func (s *ProductService) FlashSale(ctx context.Context) ([]models.Product, error) {
	sales, err := s.discounts.ListActiveByType(ctx, models.DiscountFlashSale)
	if err != nil {
		return nil, err
	}
	now := s.now()
	best := map[string]decimal.Decimal{}
	var ids []string
	for _, d := range sales {
		if d.CurrentStatus(now) != models.StatusOngoing {
			continue
		}
		for _, pid := range d.ApplicableProducts {
			if v, ok := best[pid]; !ok || d.Value.GreaterThan(v) {
				if !ok {
					ids = append(ids, pid)
				}
				best[pid] = d.Value
			}
		}
	}
	products, err := s.products.FindByIDs(ctx, ids, true)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].DiscountValue = best[products[i].ID]
	}
	return products, nil
}

func (s *ProductService) TopSelling(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = constants.DefaultTopSelling
	}
	return s.products.TopSelling(ctx, limit)
}

func (s *ProductService) ByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, apperrors.Validation(apperrors.ErrCodeMissingFields, "product_ids is required")
	}
	return s.products.FindByIDs(ctx, ids, false)
}

// Search dùng Elasticsearch; lỗi hoặc không cấu hình thì xếp hạng trên DB
func (s *ProductService) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResult, error) {
	if s.search.Enabled() {
		products, total, err := s.search.Search(ctx, req)
		if err == nil {
			return &dto.SearchResult{Products: products, Total: total, Source: "index"}, nil
		}
		s.logger.Error("search index unavailable, falling back to database: %v", err)
	}
	return s.filterFromDB(ctx, &dto.FilterRequest{Query: req.Query, PageQuery: req.PageQuery})
}

func (s *ProductService) Filter(ctx context.Context, req *dto.FilterRequest) (*dto.SearchResult, error) {
	if err := validator.ValidateFilter(req); err != nil {
		return nil, err
	}
	if s.search.Enabled() {
		products, total, err := s.search.Filter(ctx, req)
		if err == nil {
			return &dto.SearchResult{Products: products, Total: total, Source: "index"}, nil
		}
		s.logger.Error("search index unavailable, falling back to database: %v", err)
	}
	return s.filterFromDB(ctx, req)
}

func (s *ProductService) filterFromDB(ctx context.Context, req *dto.FilterRequest) (*dto.SearchResult, error) {
	all, err := s.products.ListActive(ctx, -1)
	if err != nil {
		return nil, err
	}

	var ratings map[string]float64
	if req.MinRating != nil {
		ids := make([]string, 0, len(all))
		for _, p := range all {
			ids = append(ids, p.ID)
		}
		if ratings, err = s.feedbacks.AverageRatings(ctx, ids); err != nil {
			return nil, err
		}
	}

	matched := make([]models.Product, 0, len(all))
	for _, p := range all {
		if len(req.Categories) > 0 && !inCategories(p, req.Categories) {
			continue
		}
		if len(req.Origins) > 0 && !containsFold(req.Origins, p.Origin) {
			continue
		}
		if req.MinRating != nil {
			if ratings[p.ID] < *req.MinRating {
				continue
			}
			p.Rating = ratings[p.ID]
		}
		matched = append(matched, p)
	}
	matched = RankProducts(req.Query, matched)

	_, limit, offset := req.Normalize()
	total := int64(len(matched))
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return &dto.SearchResult{Products: matched[offset:end], Total: total, Source: "database"}, nil
}

// Reindex đẩy toàn bộ sản phẩm (kèm rating) lên Elasticsearch
func (s *ProductService) Reindex(ctx context.Context) (int, error) {
	if !s.search.Enabled() {
		return 0, apperrors.OperationFailed(apperrors.ErrCodeUpstreamFailure, "Search index is not configured")
	}
	all, err := s.products.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(all))
	for _, p := range all {
		ids = append(ids, p.ID)
	}
	ratings, err := s.feedbacks.AverageRatings(ctx, ids)
	if err != nil {
		return 0, err
	}
	for i := range all {
		all[i].Rating = ratings[all[i].ID]
	}

	if err := s.search.DeleteIndex(ctx); err != nil {
		return 0, apperrors.Backend(err)
	}
	if err := s.search.IndexProducts(ctx, all); err != nil {
		return 0, apperrors.Backend(err)
	}
	return len(all), nil
}

// Update gán values[i] cho keys[i]; chỉ các trường trong danh sách cho phép
func (s *ProductService) Update(ctx context.Context, sellerID, id string, req *dto.UpdateProductRequest) (*models.Product, error) {
	if len(req.Keys) == 0 || len(req.Keys) != len(req.Values) {
		return nil, apperrors.Validation(apperrors.ErrCodeInvalidUpdateFields, "keys and values must be non-empty and of equal length")
	}
	p, err := s.checkOwner(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(req.Keys))
	for i, key := range req.Keys {
		cols, err := s.assignField(ctx, p, key, req.Values[i])
		if err != nil {
			return nil, err
		}
		columns = append(columns, cols...)
	}
	columns = append(columns, "updated_at")
	p.UpdatedAt = s.now()

	if _, err := s.products.UpdateColumns(ctx, p, columns...); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, constants.CacheKeyProduct+id)

	s.runner.Run(ctx,
		commands.NewWriteProductLogCommand(s.logs, id, "Product Updated",
			fmt.Sprintf("Updated fields: %s", strings.Join(req.Keys, ", "))),
		s.notifySeller(sellerID, "Product Updated", fmt.Sprintf("Product %s has been updated", p.Name), "/product/"+id),
	)
	return p, nil
}

func (s *ProductService) assignField(ctx context.Context, p *models.Product, key string, raw json.RawMessage) ([]string, error) {
	invalid := func() ([]string, error) {
		return nil, apperrors.Validation(apperrors.ErrCodeInvalidUpdateFields, fmt.Sprintf("invalid value for %s", key))
	}
	switch key {
	case "name":
		var v string
		if json.Unmarshal(raw, &v) != nil || strings.TrimSpace(v) == "" {
			return invalid()
		}
		if v == p.Name {
			return nil, nil
		}
		slug, err := s.uniqueSlug(ctx, v)
		if err != nil {
			return nil, err
		}
		p.Name, p.Slug = v, slug
		return []string{"name", "slug"}, nil
	case "description", "origin", "address":
		var v string
		if json.Unmarshal(raw, &v) != nil {
			return invalid()
		}
		switch key {
		case "description":
			p.Description = v
		case "origin":
			p.Origin = v
		default:
			p.Address = v
		}
		return []string{key}, nil
	case "images", "tags":
		var v []string
		if json.Unmarshal(raw, &v) != nil {
			return invalid()
		}
		if key == "images" {
			p.Images = v
		} else {
			p.Tags = v
		}
		return []string{key}, nil
	case "category_id":
		var v string
		if json.Unmarshal(raw, &v) != nil {
			return invalid()
		}
		categories, err := s.resolveCategories(ctx, v)
		if err != nil {
			return nil, err
		}
		p.Categories = categories
		return []string{"categories"}, nil
	default:
		return nil, apperrors.Validation(apperrors.ErrCodeInvalidUpdateFields, fmt.Sprintf("field %s cannot be updated", key))
	}
}

func (s *ProductService) ToggleActive(ctx context.Context, sellerID, id string) (*models.Product, error) {
	p, err := s.checkOwner(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	affected, err := s.products.ToggleActive(ctx, id, p.IsActive)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apperrors.OperationFailed(apperrors.ErrCodeToggleFailed, "Failed to toggle product status")
	}
	p.IsActive = !p.IsActive
	s.cache.Delete(ctx, constants.CacheKeyProduct+id)

	state := "hidden"
	if p.IsActive {
		state = "visible"
	}
	s.runner.Run(ctx, commands.NewWriteProductLogCommand(s.logs, id, "Product Status Changed", "Product is now "+state))
	return p, nil
}

func (s *ProductService) AddStock(ctx context.Context, sellerID, id string, req *dto.StockRequest) (*models.ProductVariant, error) {
	return s.sellerStock(ctx, sellerID, id, req, 1)
}

func (s *ProductService) DelStock(ctx context.Context, sellerID, id string, req *dto.StockRequest) (*models.ProductVariant, error) {
	return s.sellerStock(ctx, sellerID, id, req, -1)
}

func (s *ProductService) sellerStock(ctx context.Context, sellerID, id string, req *dto.StockRequest, sign int) (*models.ProductVariant, error) {
	if req.SKU == "" {
		return nil, apperrors.Validation(apperrors.ErrCodeMissingFields, "sku is required")
	}
	if req.StockValue <= 0 {
		return nil, apperrors.Validation(apperrors.ErrCodeInvalidStockValue, "stock_value must be greater than 0")
	}
	if _, err := s.checkOwner(ctx, sellerID, id); err != nil {
		return nil, err
	}
	v, err := s.adjustStock(ctx, id, req.SKU, sign*req.StockValue)
	if err != nil {
		return nil, err
	}
	action := "added to"
	if sign < 0 {
		action = "removed from"
	}
	s.runner.Run(ctx, commands.NewWriteProductLogCommand(s.logs, id, "Stock Updated",
		fmt.Sprintf("%d units %s %s", req.StockValue, action, req.SKU)))
	return v, nil
}

// UpdateStock phục vụ RPC update_stock: giá trị âm là bán ra, cộng vào sold_count
func (s *ProductService) UpdateStock(ctx context.Context, productID, sku string, delta int) error {
	if delta == 0 {
		return apperrors.Validation(apperrors.ErrCodeInvalidStockValue, "stockValue must not be zero")
	}
	if _, err := s.adjustStock(ctx, productID, sku, delta); err != nil {
		return err
	}
	if delta < 0 {
		if err := s.products.IncrementSold(ctx, productID, -delta); err != nil {
			s.logger.Error("increment sold count of %s: %v", productID, err)
		}
	}
	return nil
}

func (s *ProductService) adjustStock(ctx context.Context, productID, sku string, delta int) (*models.ProductVariant, error) {
	v, err := s.products.FindVariant(ctx, productID, sku)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeSkuNotFound, "SKU not found")
	}
	affected, err := s.products.AdjustStock(ctx, productID, sku, delta)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apperrors.OperationFailed(apperrors.ErrCodeInsufficientStock, "Insufficient stock")
	}
	s.cache.Delete(ctx, constants.CacheKeyProduct+productID)
	v.Stock += delta
	return v, nil
}

// Delete xóa sản phẩm và gỡ nó khỏi applicable_products của các discount (best-effort)
func (s *ProductService) Delete(ctx context.Context, sellerID, id string) error {
	p, err := s.checkOwner(ctx, sellerID, id)
	if err != nil {
		return err
	}
	affected, err := s.products.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.OperationFailed(apperrors.ErrCodeDeleteFailed, "Failed to delete product")
	}
	s.cache.Delete(ctx, constants.CacheKeyProduct+id)

	for _, status := range models.AllStatuses {
		for _, did := range *p.Bucket(status) {
			if _, err := s.discounts.RemoveApplicableProduct(ctx, did, id); err != nil {
				s.logger.Error("detach product %s from discount %s: %v", id, did, err)
			}
		}
	}
	s.runner.Run(ctx, s.notifySeller(sellerID, "Product Deleted", fmt.Sprintf("Product %s has been deleted", p.Name), "/product"))
	return nil
}

func (s *ProductService) Logs(ctx context.Context, sellerID, id string) ([]models.ProductLog, error) {
	if _, err := s.checkOwner(ctx, sellerID, id); err != nil {
		return nil, err
	}
	return s.logs.ListByProduct(ctx, id, constants.ProductLogLimit)
}

func (s *ProductService) checkOwner(ctx context.Context, sellerID, id string) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeProductNotFound, "Product not found")
	}
	if p.SellerID != sellerID {
		return nil, apperrors.Unauthorized("You are not the owner of this product")
	}
	return p, nil
}

func (s *ProductService) resolveCategories(ctx context.Context, categoryID string) ([]models.CategoryRef, error) {
	if categoryID == "" {
		return []models.CategoryRef{}, nil
	}
	if s.categories == nil {
		return nil, apperrors.NotFound(apperrors.ErrCodeCategoryNotFound, "Category not found")
	}
	path, err := s.categories.AncestorPath(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, apperrors.NotFound(apperrors.ErrCodeCategoryNotFound, "Category not found")
	}
	return path, nil
}

// uniqueSlug thêm hậu tố -1, -2, ... cho tới khi không trùng
func (s *ProductService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := utils.CreateSlug(name)
	if base == "" {
		base = "product"
	}
	slug := base
	for i := 1; ; i++ {
		exists, err := s.products.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *ProductService) notifySeller(sellerID, title, content, path string) commands.Command {
	return notifyCommand(s.notifier, sellerID, constants.RoleSeller, constants.ProductNotification, title, content, path)
}

func maxDiscountValue(list []models.Discount) decimal.Decimal {
	best := decimal.Zero
	for _, d := range list {
		if d.Value.GreaterThan(best) {
			best = d.Value
		}
	}
	return best
}

func inCategories(p models.Product, wanted []string) bool {
	for _, c := range p.Categories {
		for _, w := range wanted {
			if c.CategoryID == w {
				return true
			}
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
