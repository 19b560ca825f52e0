package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog/config"
	"catalog/controllers"
	"catalog/dto"
	"catalog/repositories"
	"catalog/services"
	"catalog/services/logger"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const testSecret = "test-secret"

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenSQLite("file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := logger.NewNopLogger()
	cache := services.NewCache(nil, log)
	productRepo := repositories.NewProductRepository(db)
	discountRepo := repositories.NewDiscountRepository(db)

	categories := services.NewCategoryService(services.CategoryServiceOptions{
		Store:  repositories.NewCategoryRepository(db),
		Cache:  cache,
		Logger: log,
	})
	products := services.NewProductService(services.ProductServiceOptions{
		Products:   productRepo,
		Discounts:  discountRepo,
		Usages:     repositories.NewDiscountUsageRepository(db),
		Feedbacks:  repositories.NewFeedbackRepository(db),
		Logs:       repositories.NewProductLogRepository(db),
		Categories: categories,
		Cache:      cache,
		Logger:     log,
	})
	discounts := services.NewDiscountService(services.DiscountServiceOptions{
		Discounts: discountRepo,
		Products:  productRepo,
		Cache:     cache,
		Logger:    log,
	})
	usages := services.NewDiscountUsageService(services.DiscountUsageServiceOptions{
		Usages:    repositories.NewDiscountUsageRepository(db),
		Discounts: discountRepo,
		Logger:    log,
	})

	router := gin.New()
	SetupRoutes(router, Controllers{
		Category: controllers.NewCategoryController(categories),
		Discount: controllers.NewDiscountController(discounts, usages),
		Product:  controllers.NewProductController(products),
		Variant: controllers.NewVariantController(services.NewVariantService(services.VariantServiceOptions{
			Store:  repositories.NewVariantRepository(db),
			Logger: log,
		})),
		Feedback: controllers.NewFeedbackController(services.NewFeedbackService(services.FeedbackServiceOptions{
			Feedbacks: repositories.NewFeedbackRepository(db),
			Products:  productRepo,
			Logger:    log,
		})),
		Upload: controllers.NewUploadController(services.NewUploadService(nil, log)),
	}, services.NewTokenParser(testSecret))
	return router
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userinfo": map[string]interface{}{"userid": userID, "role": role},
	})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + s
}

func doJSON(t *testing.T, router *gin.Engine, method, path, auth string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func TestAuthGuards(t *testing.T) {
	router := setupRouter(t)
	body := map[string]interface{}{"name": "Thời trang"}

	tests := []struct {
		name     string
		auth     string
		wantCode int
		wantErr  string
	}{
		{name: "missing token", wantCode: http.StatusUnauthorized, wantErr: "MISSING_TOKEN"},
		{name: "garbage token", auth: "Bearer abc", wantCode: http.StatusUnauthorized, wantErr: "INVALID_TOKEN"},
		{name: "wrong role", auth: bearer(t, "u-1", "seller"), wantCode: http.StatusForbidden},
		{name: "admin", auth: bearer(t, "u-1", "admin"), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, router, http.MethodPost, "/api/v1/category/root", tt.auth, body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantErr != "" && env.Error.Code != tt.wantErr {
				t.Fatalf("error code = %q, want %q", env.Error.Code, tt.wantErr)
			}
		})
	}
}

func TestCategoryPathFlow(t *testing.T) {
	router := setupRouter(t)
	admin := bearer(t, "admin-1", "admin")

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/category/root", admin, map[string]interface{}{"name": "Thời trang"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create root: %d %s", w.Code, w.Body.String())
	}
	var root struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(env.Data, &root)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/category/branch", admin,
		map[string]interface{}{"name": "Áo", "parent_id": root.ID, "level": 1})
	if w.Code != http.StatusCreated {
		t.Fatalf("create branch: %d %s", w.Code, w.Body.String())
	}
	var branch struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	_ = json.Unmarshal(env.Data, &branch)
	if branch.Slug != "ao" {
		t.Fatalf("slug = %q, want ao", branch.Slug)
	}

	w, env = doJSON(t, router, http.MethodGet, "/api/v1/category/path/"+branch.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("path: %d %s", w.Code, w.Body.String())
	}
	var path []struct {
		CategoryName string `json:"category_name"`
	}
	_ = json.Unmarshal(env.Data, &path)
	if len(path) != 2 || path[0].CategoryName != "Thời trang" || path[1].CategoryName != "Áo" {
		t.Fatalf("path = %+v", path)
	}

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/category/branch", admin,
		map[string]interface{}{"name": "Quần", "parent_id": "missing", "level": 1})
	if w.Code != http.StatusNotFound || env.Error.Code != "PARENT_NOT_FOUND" {
		t.Fatalf("missing parent: %d %s", w.Code, w.Body.String())
	}
}

func TestProductCreateAndFetch(t *testing.T) {
	router := setupRouter(t)
	seller := bearer(t, "seller-1", "seller")
	price := decimal.NewFromInt(120000)

	req := dto.CreateProductRequest{
		Name:     "Áo thun",
		Variants: []dto.ProductVariantRequest{{SKU: "AT-01", Price: &price, Stock: 5}},
	}
	w, env := doJSON(t, router, http.MethodPost, "/api/v1/product", seller, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	_ = json.Unmarshal(env.Data, &created)
	if created.Slug != "ao-thun" {
		t.Fatalf("slug = %q", created.Slug)
	}

	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/product/"+created.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}

	w, env = doJSON(t, router, http.MethodPut, "/api/v1/product/stock/del/"+created.ID, seller,
		dto.StockRequest{SKU: "AT-01", StockValue: 10})
	if w.Code != http.StatusBadRequest || env.Error.Code != "INSUFFICIENT_STOCK" {
		t.Fatalf("del stock: %d %s", w.Code, w.Body.String())
	}

	other := bearer(t, "seller-2", "seller")
	w, env = doJSON(t, router, http.MethodDelete, "/api/v1/product/"+created.ID, other, nil)
	if w.Code != http.StatusForbidden || env.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("foreign delete: %d %s", w.Code, w.Body.String())
	}

	w, env = doJSON(t, router, http.MethodGet, "/api/v1/product/missing", "", nil)
	if w.Code != http.StatusNotFound || env.Error.Code != "PRODUCT_NOT_FOUND" {
		t.Fatalf("missing: %d %s", w.Code, w.Body.String())
	}
}
