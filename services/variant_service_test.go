package services

import (
	"context"
	"testing"

	"catalog/dto"
	apperrors "catalog/errors"
	"catalog/repositories"
)

func newVariantService(t *testing.T) *VariantService {
	return NewVariantService(VariantServiceOptions{
		Store:  repositories.NewVariantRepository(newTestDB(t)),
		Logger: nopLogger(),
	})
}

func TestVariantGroupsByCategory(t *testing.T) {
	ctx := context.Background()
	svc := newVariantService(t)

	_, err := svc.BulkCreate(ctx, &dto.BulkCreateVariantRequest{Variants: []dto.CreateVariantRequest{
		{SKU: "C-RED", Group: "color", Variant: "red", Categories: []string{"shirts"}},
		{SKU: "S-M", Group: "size", Variant: "M", Categories: []string{"shirts"}},
		{SKU: "C-BLUE", Group: "color", Variant: "blue", Categories: []string{"shirts", "pants"}},
		{SKU: "S-32", Group: "size", Variant: "32", Categories: []string{"pants"}},
	}})
	if err != nil {
		t.Fatalf("bulk create: %v", err)
	}

	groups, err := svc.ByCategory(ctx, "shirts")
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if len(groups) != 2 || groups[0].Group != "color" || groups[1].Group != "size" {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if len(groups[0].Variants) != 2 || groups[0].Variants[0].Variant != "blue" {
		t.Fatalf("color group should hold blue and red: %+v", groups[0].Variants)
	}

	sizes, _ := svc.ByGroup(ctx, "size")
	if len(sizes) != 2 {
		t.Fatalf("size group has %d variants, want 2", len(sizes))
	}
}

func TestVariantDuplicatesAndMissing(t *testing.T) {
	ctx := context.Background()
	svc := newVariantService(t)

	if _, err := svc.Create(ctx, &dto.CreateVariantRequest{SKU: "A", Group: "color", Variant: "red"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, &dto.CreateVariantRequest{SKU: "A", Group: "color", Variant: "green"})
	assertCode(t, err, apperrors.ErrCodeVariantExists)

	_, err = svc.BulkCreate(ctx, &dto.BulkCreateVariantRequest{Variants: []dto.CreateVariantRequest{
		{SKU: "B", Group: "size", Variant: "S"},
		{SKU: "B", Group: "size", Variant: "M"},
	}})
	assertCode(t, err, apperrors.ErrCodeVariantExists)

	_, err = svc.Create(ctx, &dto.CreateVariantRequest{SKU: "C", Variant: "x"})
	assertCode(t, err, apperrors.ErrCodeMissingFields)

	_, err = svc.GetBySKU(ctx, "nope")
	assertCode(t, err, apperrors.ErrCodeVariantNotFound)
	assertCode(t, svc.Delete(ctx, "nope"), apperrors.ErrCodeVariantNotFound)
	_, err = svc.DeleteGroup(ctx, "nope")
	assertCode(t, err, apperrors.ErrCodeVariantNotFound)
}

func TestVariantUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newVariantService(t)
	svc.Create(ctx, &dto.CreateVariantRequest{SKU: "A", Group: "color", Variant: "red"})

	_, err := svc.Update(ctx, "A", &dto.UpdateVariantRequest{})
	assertCode(t, err, apperrors.ErrCodeMissingFields)

	cats := []string{"hats"}
	v, err := svc.Update(ctx, "A", &dto.UpdateVariantRequest{Variant: strPtr("crimson"), Categories: &cats})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if v.Variant != "crimson" || v.Group != "color" || !v.Categories.Contains("hats") {
		t.Fatalf("unexpected variant after update: %+v", v)
	}

	_, err = svc.Update(ctx, "nope", &dto.UpdateVariantRequest{Variant: strPtr("x")})
	assertCode(t, err, apperrors.ErrCodeVariantNotFound)

	n, err := svc.DeleteGroup(ctx, "color")
	if err != nil || n != 1 {
		t.Fatalf("delete group: %d %v", n, err)
	}
}
