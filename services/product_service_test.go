package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"catalog/dto"
	apperrors "catalog/errors"
	"catalog/models"
	"catalog/repositories"

	"github.com/shopspring/decimal"
)

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, key string, v interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.events = append(p.events, v)
	return nil
}

type productFixture struct {
	svc        *ProductService
	categories *CategoryService
	discounts  *repositories.DiscountRepository
	usages     *repositories.DiscountUsageRepository
	feedbacks  *repositories.FeedbackRepository
	logs       *repositories.ProductLogRepository
	events     *recordingPublisher
	now        time.Time
}

func newProductFixture(t *testing.T) *productFixture {
	db := newTestDB(t)
	f := &productFixture{
		discounts: repositories.NewDiscountRepository(db),
		usages:    repositories.NewDiscountUsageRepository(db),
		feedbacks: repositories.NewFeedbackRepository(db),
		logs:      repositories.NewProductLogRepository(db),
		events:    &recordingPublisher{},
		now:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.categories = NewCategoryService(CategoryServiceOptions{
		Store:  repositories.NewCategoryRepository(db),
		Logger: nopLogger(),
	})
	f.svc = NewProductService(ProductServiceOptions{
		Products:   repositories.NewProductRepository(db),
		Discounts:  f.discounts,
		Usages:     f.usages,
		Feedbacks:  f.feedbacks,
		Logs:       f.logs,
		Categories: f.categories,
		Events:     f.events,
		Logger:     nopLogger(),
		Clock:      func() time.Time { return f.now },
	})
	return f
}

func variantReq(sku string, price int64, stock int) dto.ProductVariantRequest {
	p := decimal.NewFromInt(price)
	return dto.ProductVariantRequest{SKU: sku, Price: &p, Stock: stock}
}

func (f *productFixture) create(t *testing.T, sellerID, name string, variants ...dto.ProductVariantRequest) *models.Product {
	t.Helper()
	if len(variants) == 0 {
		variants = []dto.ProductVariantRequest{variantReq(name+"-sku", 100, 10)}
	}
	p, err := f.svc.Create(context.Background(), sellerID, &dto.CreateProductRequest{Name: name, Origin: "Vietnam", Variants: variants})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func (f *productFixture) discount(t *testing.T, sellerID string, typ models.DiscountType, value, limit int, start, end time.Time, products ...string) *models.Discount {
	t.Helper()
	d := &models.Discount{
		SellerID:           sellerID,
		Code:               "CODE",
		Type:               typ,
		Value:              decimal.NewFromInt(int64(value)),
		CustomerUsageLimit: limit,
		ApplicableProducts: products,
		IsActive:           true,
		StartDate:          start,
		EndDate:            end,
	}
	d.Refresh(f.now)
	if err := f.discounts.Create(context.Background(), d); err != nil {
		t.Fatalf("create discount: %v", err)
	}
	return d
}

func TestProductCreate(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)

	root, _ := f.categories.CreateRoot(ctx, &dto.CreateRootCategoryRequest{Name: "Fashion"})
	leaf, _ := f.categories.CreateBranch(ctx, &dto.CreateCategoryRequest{Name: "Shirts", ParentID: root.ID, Level: intPtr(1)})

	p, err := f.svc.Create(ctx, "seller-1", &dto.CreateProductRequest{
		Name:       "Áo Thun",
		CategoryID: leaf.ID,
		Variants:   []dto.ProductVariantRequest{variantReq("TS-1", 100, 3)},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Slug != "ao-thun" || !p.IsActive {
		t.Fatalf("unexpected product: %+v", p)
	}
	if len(p.Categories) != 2 || p.Categories[0].CategoryID != root.ID || p.Categories[1].CategoryID != leaf.ID {
		t.Fatalf("categories should hold the ancestor path: %+v", p.Categories)
	}

	second := f.create(t, "seller-1", "Ao thun")
	third := f.create(t, "seller-1", "AO THUN")
	if second.Slug != "ao-thun-1" || third.Slug != "ao-thun-2" {
		t.Fatalf("slugs not unique: %s %s", second.Slug, third.Slug)
	}

	if len(f.events.keys) != 3 || f.events.keys[0] != p.ID {
		t.Fatalf("product_created events = %v", f.events.keys)
	}
	logs, _ := f.logs.ListByProduct(ctx, p.ID, 10)
	if len(logs) != 1 {
		t.Fatalf("expected a creation log, got %d", len(logs))
	}

	_, err = f.svc.Create(ctx, "seller-1", &dto.CreateProductRequest{
		Name: "Dup", Variants: []dto.ProductVariantRequest{variantReq("TS-1", 1, 1)},
	})
	assertCode(t, err, apperrors.ErrCodeInvalidProductData)

	_, err = f.svc.Create(ctx, "seller-1", &dto.CreateProductRequest{
		Name: "Lost", CategoryID: "missing", Variants: []dto.ProductVariantRequest{variantReq("L-1", 1, 1)},
	})
	assertCode(t, err, apperrors.ErrCodeCategoryNotFound)
}

func TestProductGetByIDEnrichment(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	p := f.create(t, "seller-1", "Lamp")

	small := f.discount(t, "seller-1", models.DiscountPercentage, 10, 1, f.now.Add(-time.Hour), f.now.Add(time.Hour), p.ID)
	big := f.discount(t, "seller-1", models.DiscountPercentage, 30, 1, f.now.Add(-time.Hour), f.now.Add(time.Hour), p.ID)
	future := f.discount(t, "seller-1", models.DiscountPercentage, 50, 1, f.now.Add(time.Hour), f.now.Add(2*time.Hour), p.ID)
	repo := f.svc.products
	for _, d := range []*models.Discount{small, big, future} {
		if _, err := repo.PlaceInBucket(ctx, p.ID, d.Status, d.ID); err != nil {
			t.Fatalf("bucket: %v", err)
		}
	}
	for _, r := range []int{4, 5} {
		rating := r
		if _, err := NewFeedbackService(FeedbackServiceOptions{Feedbacks: f.feedbacks, Products: repo, Logger: nopLogger()}).
			Create(ctx, "customer-1", &dto.CreateFeedbackRequest{ProductID: p.ID, Rating: &rating}); err != nil {
			t.Fatalf("feedback: %v", err)
		}
	}

	got, err := f.svc.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.DiscountValue.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("discount_value = %s, want 30", got.DiscountValue)
	}
	if got.Rating != 4.5 {
		t.Fatalf("rating = %v, want 4.5", got.Rating)
	}

	f.now = f.now.Add(90 * time.Minute)
	got, _ = f.svc.GetByID(ctx, p.ID)
	if !got.DiscountValue.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("upcoming discount should count once it starts, got %s", got.DiscountValue)
	}

	_, err = f.svc.GetByID(ctx, "missing")
	assertCode(t, err, apperrors.ErrCodeProductNotFound)
}

func TestProductDiscountsForCustomer(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	p := f.create(t, "seller-1", "Kettle")
	once := f.discount(t, "seller-1", models.DiscountPercentage, 10, 1, f.now.Add(-time.Hour), f.now.Add(time.Hour), p.ID)
	twice := f.discount(t, "seller-1", models.DiscountPercentage, 20, 2, f.now.Add(-time.Hour), f.now.Add(time.Hour), p.ID)
	for _, d := range []*models.Discount{once, twice} {
		f.svc.products.PlaceInBucket(ctx, p.ID, models.StatusOngoing, d.ID)
	}
	for _, d := range []*models.Discount{once, twice} {
		if err := f.usages.Create(ctx, &models.DiscountUsage{CustomerID: "customer-1", DiscountID: d.ID, ProductID: p.ID}); err != nil {
			t.Fatalf("usage: %v", err)
		}
	}

	all, err := f.svc.DiscountsForProduct(ctx, p.ID, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("anonymous view: %v %v", all, err)
	}
	mine, err := f.svc.DiscountsForProduct(ctx, p.ID, "customer-1")
	if err != nil || len(mine) != 1 || mine[0].ID != twice.ID {
		t.Fatalf("customer view should drop exhausted discount: %+v %v", mine, err)
	}
}

func TestProductFlashSale(t *testing.T) {
	f := newProductFixture(t)
	on := f.create(t, "seller-1", "Phone")
	off := f.create(t, "seller-1", "Tablet")
	f.discount(t, "seller-1", models.DiscountFlashSale, 40, 1, f.now.Add(-time.Hour), f.now.Add(time.Hour), on.ID)
	f.discount(t, "seller-1", models.DiscountFlashSale, 40, 1, f.now.Add(time.Hour), f.now.Add(2*time.Hour), off.ID)

	list, err := f.svc.FlashSale(context.Background())
	if err != nil {
		t.Fatalf("flash sale: %v", err)
	}
	if len(list) != 1 || list[0].ID != on.ID || !list[0].DiscountValue.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected flash sale list: %+v", list)
	}
}

func TestProductStock(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	p := f.create(t, "seller-1", "Mug", variantReq("MUG-1", 50, 5))

	v, err := f.svc.AddStock(ctx, "seller-1", p.ID, &dto.StockRequest{SKU: "MUG-1", StockValue: 3})
	if err != nil || v.Stock != 8 {
		t.Fatalf("add stock: %+v %v", v, err)
	}

	_, err = f.svc.DelStock(ctx, "seller-1", p.ID, &dto.StockRequest{SKU: "MUG-1", StockValue: 9})
	assertCode(t, err, apperrors.ErrCodeInsufficientStock)
	_, err = f.svc.AddStock(ctx, "seller-1", p.ID, &dto.StockRequest{SKU: "MUG-1", StockValue: 0})
	assertCode(t, err, apperrors.ErrCodeInvalidStockValue)
	_, err = f.svc.AddStock(ctx, "seller-1", p.ID, &dto.StockRequest{SKU: "NOPE", StockValue: 1})
	assertCode(t, err, apperrors.ErrCodeSkuNotFound)
	_, err = f.svc.AddStock(ctx, "seller-2", p.ID, &dto.StockRequest{SKU: "MUG-1", StockValue: 1})
	assertCode(t, err, apperrors.ErrCodeUnauthorized)

	if err := f.svc.UpdateStock(ctx, p.ID, "MUG-1", -2); err != nil {
		t.Fatalf("rpc deduct: %v", err)
	}
	got, _ := f.svc.GetByID(ctx, p.ID)
	if got.TotalStock() != 6 || got.SoldCount != 2 {
		t.Fatalf("stock=%d sold=%d, want 6 and 2", got.TotalStock(), got.SoldCount)
	}
}

func TestProductUpdateWhitelist(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	p := f.create(t, "seller-1", "Old Name")

	raw := func(v interface{}) json.RawMessage {
		b, _ := json.Marshal(v)
		return b
	}
	updated, err := f.svc.Update(ctx, "seller-1", p.ID, &dto.UpdateProductRequest{
		Keys:   []string{"name", "tags"},
		Values: []json.RawMessage{raw("New Name"), raw([]string{"sale"})},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Slug != "new-name" || !updated.Tags.Contains("sale") {
		t.Fatalf("unexpected update: %+v", updated)
	}

	_, err = f.svc.Update(ctx, "seller-1", p.ID, &dto.UpdateProductRequest{
		Keys: []string{"sold_count"}, Values: []json.RawMessage{raw(999)},
	})
	assertCode(t, err, apperrors.ErrCodeInvalidUpdateFields)

	_, err = f.svc.Update(ctx, "seller-1", p.ID, &dto.UpdateProductRequest{
		Keys: []string{"name", "origin"}, Values: []json.RawMessage{raw("x")},
	})
	assertCode(t, err, apperrors.ErrCodeInvalidUpdateFields)
}

func TestProductSearchFallsBackToDatabase(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	f.create(t, "seller-1", "Giày Chạy Bộ")
	f.create(t, "seller-1", "Bàn Phím Cơ")
	hidden := f.create(t, "seller-1", "Giày Da")
	if _, err := f.svc.ToggleActive(ctx, "seller-1", hidden.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	res, err := f.svc.Search(ctx, &dto.SearchRequest{Query: "giay"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Source != "database" || res.Total != 1 || res.Products[0].Slug != "giay-chay-bo" {
		t.Fatalf("unexpected search result: %+v", res)
	}

	origin := []string{"vietnam"}
	res, err = f.svc.Filter(ctx, &dto.FilterRequest{Origins: origin})
	if err != nil || res.Total != 2 {
		t.Fatalf("filter by origin: %+v %v", res, err)
	}
}

func TestProductDeleteDetachesDiscounts(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	p := f.create(t, "seller-1", "Desk")
	d := f.discount(t, "seller-1", models.DiscountPercentage, 10, 1, f.now.Add(-time.Hour), f.now.Add(time.Hour), p.ID)
	f.svc.products.PlaceInBucket(ctx, p.ID, models.StatusOngoing, d.ID)

	assertCode(t, f.svc.Delete(ctx, "seller-2", p.ID), apperrors.ErrCodeUnauthorized)
	if err := f.svc.Delete(ctx, "seller-1", p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := f.discounts.FindByID(ctx, d.ID)
	if got.ApplicableProducts.Contains(p.ID) {
		t.Fatalf("discount still references deleted product")
	}
	_, err := f.svc.GetByID(ctx, p.ID)
	assertCode(t, err, apperrors.ErrCodeProductNotFound)
}
