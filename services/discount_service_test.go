package services

import (
	"context"
	"testing"
	"time"

	"catalog/dto"
	apperrors "catalog/errors"
	"catalog/models"
	"catalog/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type discountFixture struct {
	db        *gorm.DB
	svc       *DiscountService
	usage     *DiscountUsageService
	products  *repositories.ProductRepository
	discounts *repositories.DiscountRepository
	now       time.Time
}

func newDiscountFixture(t *testing.T) *discountFixture {
	db := newTestDB(t)
	f := &discountFixture{
		db:        db,
		products:  repositories.NewProductRepository(db),
		discounts: repositories.NewDiscountRepository(db),
		now:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.svc = NewDiscountService(DiscountServiceOptions{
		Discounts: f.discounts,
		Products:  f.products,
		Logs:      repositories.NewProductLogRepository(db),
		Logger:    nopLogger(),
		Clock:     clock,
	})
	f.usage = NewDiscountUsageService(DiscountUsageServiceOptions{
		Usages:    repositories.NewDiscountUsageRepository(db),
		Discounts: f.discounts,
		Logger:    nopLogger(),
		Clock:     clock,
	})
	return f
}

func (f *discountFixture) seedProduct(t *testing.T, sellerID, name string) *models.Product {
	t.Helper()
	p := &models.Product{
		SellerID:         sellerID,
		Name:             name,
		Slug:             name,
		IsActive:         true,
		OngoingDiscounts: models.StringList{"pre-existing"},
		Variants: []models.ProductVariant{
			{SKU: name + "-sku", Price: decimal.NewFromInt(100), Stock: 5},
		},
	}
	if err := f.products.Create(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func (f *discountFixture) createDiscount(t *testing.T, sellerID string, start, end time.Time, limit int, products ...string) *models.Discount {
	t.Helper()
	value, maxUses := decimal.NewFromInt(20), 0
	minimum := decimal.Zero
	d, err := f.svc.Create(context.Background(), sellerID, &dto.CreateDiscountRequest{
		Code:               "SUMMER",
		Type:               models.DiscountPercentage,
		Value:              &value,
		MinimumPurchase:    &minimum,
		MaxUses:            &maxUses,
		CustomerUsageLimit: &limit,
		ApplicableProducts: products,
		StartDate:          &start,
		EndDate:            &end,
	})
	if err != nil {
		t.Fatalf("create discount: %v", err)
	}
	return d
}

func sameList(a, b models.StringList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiscountCreateComputesStatus(t *testing.T) {
	f := newDiscountFixture(t)
	mine := f.seedProduct(t, "seller-1", "mine")
	theirs := f.seedProduct(t, "seller-2", "theirs")

	d := f.createDiscount(t, "seller-1", f.now.Add(time.Hour), f.now.Add(48*time.Hour), 1, mine.ID, theirs.ID)
	if d.Status != models.StatusUpcoming || !d.IsActive {
		t.Fatalf("unexpected discount: %+v", d)
	}
	if !sameList(d.ApplicableProducts, models.StringList{mine.ID}) {
		t.Fatalf("foreign product should be dropped: %v", d.ApplicableProducts)
	}

	p, _ := f.products.FindByID(context.Background(), mine.ID)
	if !p.UpcomingDiscounts.Contains(d.ID) {
		t.Fatalf("product bucket not mirrored: %+v", p.UpcomingDiscounts)
	}
}

func TestDiscountApplyRemoveRestoresBuckets(t *testing.T) {
	ctx := context.Background()
	f := newDiscountFixture(t)
	p := f.seedProduct(t, "seller-1", "shirt")
	d := f.createDiscount(t, "seller-1", f.now.Add(-time.Hour), f.now.Add(time.Hour), 1)

	before, _ := f.products.FindByID(ctx, p.ID)

	for i := 0; i < 2; i++ {
		applied, err := f.svc.Apply(ctx, "seller-1", d.ID, p.ID)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if len(applied.ApplicableProducts) != 1 {
			t.Fatalf("apply must not duplicate: %v", applied.ApplicableProducts)
		}
	}
	mid, _ := f.products.FindByID(ctx, p.ID)
	if !mid.OngoingDiscounts.Contains(d.ID) {
		t.Fatalf("ongoing bucket missing discount: %v", mid.OngoingDiscounts)
	}

	if _, err := f.svc.Remove(ctx, "seller-1", d.ID, p.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	after, _ := f.products.FindByID(ctx, p.ID)
	for _, s := range models.AllStatuses {
		if !sameList(*before.Bucket(s), *after.Bucket(s)) {
			t.Fatalf("bucket %s changed: before %v after %v", s, *before.Bucket(s), *after.Bucket(s))
		}
	}
}

func TestDiscountOwnership(t *testing.T) {
	ctx := context.Background()
	f := newDiscountFixture(t)
	p := f.seedProduct(t, "seller-1", "shoe")
	d := f.createDiscount(t, "seller-1", f.now.Add(-time.Hour), f.now.Add(time.Hour), 1)

	_, err := f.svc.Apply(ctx, "seller-2", d.ID, p.ID)
	assertCode(t, err, apperrors.ErrCodeUnauthorized)
	if appErr := apperrors.GetAppError(err); appErr.HTTPStatus() != 403 {
		t.Fatalf("status = %d, want 403", appErr.HTTPStatus())
	}

	_, err = f.svc.Apply(ctx, "seller-1", "missing", p.ID)
	assertCode(t, err, apperrors.ErrCodeDiscountNotFound)

	_, err = f.svc.Apply(ctx, "seller-1", d.ID, "missing")
	assertCode(t, err, apperrors.ErrCodeProductNotFound)
}

func TestDiscountToggleBlocksApply(t *testing.T) {
	ctx := context.Background()
	f := newDiscountFixture(t)
	p := f.seedProduct(t, "seller-1", "hat")
	d := f.createDiscount(t, "seller-1", f.now.Add(-time.Hour), f.now.Add(time.Hour), 1)

	toggled, err := f.svc.Toggle(ctx, "seller-1", d.ID)
	if err != nil || toggled.IsActive {
		t.Fatalf("toggle: %+v %v", toggled, err)
	}
	_, err = f.svc.Apply(ctx, "seller-1", d.ID, p.ID)
	assertCode(t, err, apperrors.ErrCodeInvalidDiscount)
}

func TestDiscountRemoveExpired(t *testing.T) {
	ctx := context.Background()
	f := newDiscountFixture(t)
	p := f.seedProduct(t, "seller-1", "bag")
	d := f.createDiscount(t, "seller-1", f.now.Add(-time.Hour), f.now.Add(time.Hour), 1)

	f.now = f.now.Add(2 * time.Hour)
	_, err := f.svc.Remove(ctx, "seller-1", d.ID, p.ID)
	assertCode(t, err, apperrors.ErrCodeExpiredDiscount)

	got, err := f.svc.GetByID(ctx, d.ID)
	if err != nil || got.Status != models.StatusExpired {
		t.Fatalf("status should be recomputed on read: %+v %v", got, err)
	}
}

func TestDiscountRefreshMovesBuckets(t *testing.T) {
	ctx := context.Background()
	f := newDiscountFixture(t)
	p := f.seedProduct(t, "seller-1", "sock")
	d := f.createDiscount(t, "seller-1", f.now.Add(time.Hour), f.now.Add(3*time.Hour), 1, p.ID)

	f.now = f.now.Add(time.Hour)
	res, err := f.svc.RefreshAllStatuses(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if res.Ongoing != 1 || res.Expired != 0 {
		t.Fatalf("unexpected refresh result: %+v", res)
	}
	got, _ := f.products.FindByID(ctx, p.ID)
	if got.UpcomingDiscounts.Contains(d.ID) || !got.OngoingDiscounts.Contains(d.ID) {
		t.Fatalf("bucket not moved: %+v", got)
	}

	f.now = f.now.Add(5 * time.Hour)
	res, _ = f.svc.RefreshAllStatuses(ctx)
	if res.Expired != 1 {
		t.Fatalf("expected one expiry, got %+v", res)
	}
	res, _ = f.svc.RefreshAllStatuses(ctx)
	if res.Ongoing+res.Expired != 0 {
		t.Fatalf("second refresh should be a no-op, got %+v", res)
	}
}

func TestDiscountDeleteDetachesProducts(t *testing.T) {
	ctx := context.Background()
	f := newDiscountFixture(t)
	p := f.seedProduct(t, "seller-1", "belt")
	d := f.createDiscount(t, "seller-1", f.now.Add(-time.Hour), f.now.Add(time.Hour), 1, p.ID)

	assertCode(t, f.svc.Delete(ctx, "seller-2", d.ID), apperrors.ErrCodeUnauthorized)
	if err := f.svc.Delete(ctx, "seller-1", d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := f.products.FindByID(ctx, p.ID)
	if got.OngoingDiscounts.Contains(d.ID) {
		t.Fatalf("deleted discount still in bucket")
	}
	_, err := f.svc.GetByID(ctx, d.ID)
	assertCode(t, err, apperrors.ErrCodeDiscountNotFound)
}

func TestRecordUsageEnforcesCustomerLimit(t *testing.T) {
	ctx := context.Background()
	f := newDiscountFixture(t)
	p := f.seedProduct(t, "seller-1", "cap")
	d := f.createDiscount(t, "seller-1", f.now.Add(-time.Hour), f.now.Add(time.Hour), 2, p.ID)

	cost := decimal.RequireFromString("12.50")
	req := &dto.RecordUsageRequest{DiscountID: d.ID, ProductID: p.ID, DiscountCost: &cost}
	for i := 0; i < 2; i++ {
		u, err := f.usage.RecordUsage(ctx, "customer-1", req)
		if err != nil {
			t.Fatalf("usage %d: %v", i+1, err)
		}
		if u.Year != 2024 || u.Month != 6 {
			t.Fatalf("usage not stamped with period: %+v", u)
		}
	}
	_, err := f.usage.RecordUsage(ctx, "customer-1", req)
	assertCode(t, err, apperrors.ErrCodeUsageLimitExceeded)

	if _, err := f.usage.RecordUsage(ctx, "customer-2", req); err != nil {
		t.Fatalf("other customer should not be limited: %v", err)
	}
	got, _ := f.discounts.FindByID(ctx, d.ID)
	if got.CurrentUses != 3 {
		t.Fatalf("current_uses = %d, want 3", got.CurrentUses)
	}

	summary, err := f.usage.Summary(ctx, "seller-1", d.ID)
	if err != nil || len(summary) != 1 || summary[0].Uses != 3 {
		t.Fatalf("unexpected summary: %+v %v", summary, err)
	}
	if !summary[0].TotalCost.Equal(decimal.RequireFromString("37.5")) {
		t.Fatalf("total cost = %s", summary[0].TotalCost)
	}
}

func TestRecordUsageRespectsMaxUses(t *testing.T) {
	ctx := context.Background()
	f := newDiscountFixture(t)
	p := f.seedProduct(t, "seller-1", "scarf")
	d := f.createDiscount(t, "seller-1", f.now.Add(-time.Hour), f.now.Add(time.Hour), 1, p.ID)
	if err := f.db.Model(&models.Discount{}).Where("id = ?", d.ID).Update("max_uses", 1).Error; err != nil {
		t.Fatalf("set max uses: %v", err)
	}

	cost := decimal.NewFromInt(1)
	req := &dto.RecordUsageRequest{DiscountID: d.ID, ProductID: p.ID, DiscountCost: &cost}
	if _, err := f.usage.RecordUsage(ctx, "customer-1", req); err != nil {
		t.Fatalf("first usage: %v", err)
	}
	_, err := f.usage.RecordUsage(ctx, "customer-2", req)
	assertCode(t, err, apperrors.ErrCodeUsageExhausted)
}

func TestRecordUsageRequiresOngoing(t *testing.T) {
	ctx := context.Background()
	f := newDiscountFixture(t)
	p := f.seedProduct(t, "seller-1", "glove")
	d := f.createDiscount(t, "seller-1", f.now.Add(time.Hour), f.now.Add(2*time.Hour), 1, p.ID)

	cost := decimal.NewFromInt(1)
	_, err := f.usage.RecordUsage(ctx, "customer-1", &dto.RecordUsageRequest{DiscountID: d.ID, ProductID: p.ID, DiscountCost: &cost})
	assertCode(t, err, apperrors.ErrCodeInvalidDiscount)

	_, err = f.usage.RecordUsage(ctx, "customer-1", &dto.RecordUsageRequest{DiscountID: d.ID})
	assertCode(t, err, apperrors.ErrCodeMissingFields)
}

func TestDiscountApplyAfterWindowOpensKeepsSingleBucket(t *testing.T) {
	ctx := context.Background()
	f := newDiscountFixture(t)
	p := f.seedProduct(t, "seller-1", "jacket")
	d := f.createDiscount(t, "seller-1", f.now.Add(time.Hour), f.now.Add(48*time.Hour), 1, p.ID)

	created, _ := f.products.FindByID(ctx, p.ID)
	if !created.UpcomingDiscounts.Contains(d.ID) {
		t.Fatalf("upcoming bucket missing discount: %v", created.UpcomingDiscounts)
	}

	// cửa sổ đã mở nhưng job refresh chưa chạy
	f.now = f.now.Add(2 * time.Hour)
	if _, err := f.svc.Apply(ctx, "seller-1", d.ID, p.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}

	got, _ := f.products.FindByID(ctx, p.ID)
	if got.UpcomingDiscounts.Contains(d.ID) || got.ExpiredDiscounts.Contains(d.ID) {
		t.Fatalf("stale bucket membership: upcoming=%v expired=%v", got.UpcomingDiscounts, got.ExpiredDiscounts)
	}
	if !got.OngoingDiscounts.Contains(d.ID) {
		t.Fatalf("ongoing bucket missing discount: %v", got.OngoingDiscounts)
	}
	if !got.OngoingDiscounts.Contains("pre-existing") {
		t.Fatalf("unrelated discount lost: %v", got.OngoingDiscounts)
	}
}
