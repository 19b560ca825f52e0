package services

import (
	"context"
	"testing"

	"catalog/dto"
	apperrors "catalog/errors"
	"catalog/models"
	"catalog/repositories"
)

func newCategoryFixture(t *testing.T) (*CategoryService, *repositories.CategoryRepository) {
	repo := repositories.NewCategoryRepository(newTestDB(t))
	return NewCategoryService(CategoryServiceOptions{Store: repo, Logger: nopLogger()}), repo
}

func mustBranch(t *testing.T, svc *CategoryService, name, parentID string, level int) *models.Category {
	t.Helper()
	c, err := svc.CreateBranch(context.Background(), &dto.CreateCategoryRequest{
		Name: name, ParentID: parentID, Level: intPtr(level),
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return c
}

func mustFind(t *testing.T, repo *repositories.CategoryRepository, id string) *models.Category {
	t.Helper()
	c, err := repo.FindByID(context.Background(), id)
	if err != nil || c == nil {
		t.Fatalf("find %s: %v %v", id, c, err)
	}
	return c
}

func TestCategoryRootAndBranchPath(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCategoryFixture(t)

	root, err := svc.CreateRoot(ctx, &dto.CreateRootCategoryRequest{Name: "Thời Trang"})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	if root.ParentID != nil || root.Level != 0 || root.Slug != "thoi-trang" {
		t.Fatalf("unexpected root: %+v", root)
	}

	child := mustBranch(t, svc, "Ao Khoac", root.ID, 1)
	path, err := svc.AncestorPath(ctx, child.ID)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if len(path) != child.Level+1 {
		t.Fatalf("path length = %d, want %d", len(path), child.Level+1)
	}
	if path[0].CategoryID != root.ID || path[1].CategoryID != child.ID {
		t.Fatalf("path order wrong: %+v", path)
	}
}

func TestCategoryBranchRequiresParent(t *testing.T) {
	svc, _ := newCategoryFixture(t)

	_, err := svc.CreateBranch(context.Background(), &dto.CreateCategoryRequest{
		Name: "Orphan", ParentID: "missing", Level: intPtr(1),
	})
	assertCode(t, err, apperrors.ErrCodeParentNotFound)

	_, err = svc.CreateBranch(context.Background(), &dto.CreateCategoryRequest{Name: "NoLevel", ParentID: "x"})
	assertCode(t, err, apperrors.ErrCodeMissingFields)
}

func TestCategoryInsertShiftsSubtree(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCategoryFixture(t)

	root, _ := svc.CreateRoot(ctx, &dto.CreateRootCategoryRequest{Name: "Root"})
	c := mustBranch(t, svc, "C", root.ID, 1)
	g := mustBranch(t, svc, "G", c.ID, 2)
	sib := mustBranch(t, svc, "S", root.ID, 1)
	sibChild := mustBranch(t, svc, "SC", sib.ID, 2)

	n, err := svc.InsertIntoHierarchy(ctx, &dto.InsertCategoryRequest{
		CreateCategoryRequest: dto.CreateCategoryRequest{Name: "N", ParentID: root.ID, Level: intPtr(1)},
		ChildrenID:            c.ID,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	gotC := mustFind(t, repo, c.ID)
	if gotC.ParentID == nil || *gotC.ParentID != n.ID || gotC.Level != 2 {
		t.Fatalf("child not re-parented: %+v", gotC)
	}
	if gotG := mustFind(t, repo, g.ID); gotG.Level != 3 {
		t.Fatalf("grandchild level = %d, want 3", gotG.Level)
	}

	path, _ := svc.AncestorPath(ctx, g.ID)
	if len(path) != 4 || path[1].CategoryID != n.ID {
		t.Fatalf("unexpected path after insert: %+v", path)
	}

	// nhánh anh em nằm ngoài cây con không bị đụng tới
	gotS := mustFind(t, repo, sib.ID)
	if gotS.Level != 1 || gotS.ParentID == nil || *gotS.ParentID != root.ID {
		t.Fatalf("sibling changed: %+v", gotS)
	}
	if gotSC := mustFind(t, repo, sibChild.ID); gotSC.Level != 2 || *gotSC.ParentID != sib.ID {
		t.Fatalf("sibling child changed: %+v", gotSC)
	}
}

func TestCategoryInsertChecksChildFirst(t *testing.T) {
	svc, _ := newCategoryFixture(t)
	_, err := svc.InsertIntoHierarchy(context.Background(), &dto.InsertCategoryRequest{
		CreateCategoryRequest: dto.CreateCategoryRequest{Name: "N", ParentID: "nope", Level: intPtr(1)},
		ChildrenID:            "also-nope",
	})
	assertCode(t, err, apperrors.ErrCodeChildNotFound)
}

func TestCategoryInsertRejectsParentInsideChildSubtree(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCategoryFixture(t)

	root, _ := svc.CreateRoot(ctx, &dto.CreateRootCategoryRequest{Name: "Root"})
	c := mustBranch(t, svc, "C", root.ID, 1)
	g := mustBranch(t, svc, "G", c.ID, 2)

	_, err := svc.InsertIntoHierarchy(ctx, &dto.InsertCategoryRequest{
		CreateCategoryRequest: dto.CreateCategoryRequest{Name: "N", ParentID: g.ID, Level: intPtr(3)},
		ChildrenID:            c.ID,
	})
	assertCode(t, err, apperrors.ErrCodeCategoryCycle)
}

func TestCategoryDeletePromotesChildren(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCategoryFixture(t)

	root, _ := svc.CreateRoot(ctx, &dto.CreateRootCategoryRequest{Name: "Root"})
	m := mustBranch(t, svc, "M", root.ID, 1)
	x := mustBranch(t, svc, "X", m.ID, 2)
	y := mustBranch(t, svc, "Y", x.ID, 3)

	if err := svc.Delete(ctx, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gone, _ := repo.FindByID(ctx, m.ID); gone != nil {
		t.Fatalf("deleted node still present")
	}
	gotX := mustFind(t, repo, x.ID)
	if gotX.ParentID == nil || *gotX.ParentID != root.ID || gotX.Level != 1 {
		t.Fatalf("X not promoted: %+v", gotX)
	}
	if gotY := mustFind(t, repo, y.ID); gotY.Level != 2 {
		t.Fatalf("Y level = %d, want 2", gotY.Level)
	}
	children, _ := repo.FindChildren(ctx, m.ID)
	if len(children) != 0 {
		t.Fatalf("nodes still reference deleted id: %+v", children)
	}
}

func TestCategoryDeleteRootPromotesToRoot(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCategoryFixture(t)

	root, _ := svc.CreateRoot(ctx, &dto.CreateRootCategoryRequest{Name: "Root"})
	c := mustBranch(t, svc, "C", root.ID, 1)

	if err := svc.Delete(ctx, root.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got := mustFind(t, repo, c.ID)
	if got.ParentID != nil || got.Level != 0 {
		t.Fatalf("child should become root: %+v", got)
	}

	assertCode(t, svc.Delete(ctx, root.ID), apperrors.ErrCodeCategoryNotFound)
}

func TestCategoryUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCategoryFixture(t)

	root, _ := svc.CreateRoot(ctx, &dto.CreateRootCategoryRequest{Name: "Old Name", Description: "keep"})
	updated, err := svc.Update(ctx, root.ID, &dto.UpdateCategoryRequest{Name: strPtr("New Name")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "New Name" || updated.Slug != "new-name" || updated.Description != "keep" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	_, err = svc.Update(ctx, "missing", &dto.UpdateCategoryRequest{Description: strPtr("x")})
	assertCode(t, err, apperrors.ErrCodeCategoryNotFound)
}

func TestCategoryWalksStopOnCycle(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCategoryFixture(t)

	a, _ := svc.CreateRoot(ctx, &dto.CreateRootCategoryRequest{Name: "A"})
	b := mustBranch(t, svc, "B", a.ID, 1)
	if err := repo.SetParent(ctx, a.ID, &b.ID, 2); err != nil {
		t.Fatalf("set parent: %v", err)
	}

	path, err := svc.AncestorPath(ctx, b.ID)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if len(path) != 2 {
		t.Fatalf("cycle path should stop after visiting each node once, got %+v", path)
	}

	_, err = collectDescendants(ctx, repo, a.ID)
	assertCode(t, err, apperrors.ErrCodeCategoryCycle)
}

func TestCategoryRootWithExplicitLevel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCategoryFixture(t)

	a, err := svc.CreateRoot(ctx, &dto.CreateRootCategoryRequest{Name: "A", Level: intPtr(1)})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	if a.ParentID != nil || a.Level != 1 {
		t.Fatalf("unexpected root: %+v", a)
	}
	b := mustBranch(t, svc, "B", a.ID, 2)

	path, err := svc.AncestorPath(ctx, b.ID)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if len(path) != 2 || path[0].CategoryID != a.ID || path[1].CategoryID != b.ID {
		t.Fatalf("path = %+v, want [A B]", path)
	}
}

// vanishingStore giả lập nút bị xóa ngay sau khi update
type vanishingStore struct {
	repositories.CategoryStore
}

func (vanishingStore) FindByID(context.Context, string) (*models.Category, error) {
	return nil, nil
}

func TestCategoryUpdateReportsVanishedNode(t *testing.T) {
	ctx := context.Background()
	_, repo := newCategoryFixture(t)
	root := &models.Category{Name: "Root", Slug: "root"}
	if err := repo.Create(ctx, root); err != nil {
		t.Fatalf("create: %v", err)
	}

	svc := NewCategoryService(CategoryServiceOptions{Store: vanishingStore{repo}, Logger: nopLogger()})
	got, err := svc.Update(ctx, root.ID, &dto.UpdateCategoryRequest{Name: strPtr("Renamed")})
	if got != nil {
		t.Fatalf("expected no category, got %+v", got)
	}
	assertCode(t, err, apperrors.ErrCodeCategoryNotFound)
}
