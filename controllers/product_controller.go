package controllers

import (
	"context"

	"catalog/constants"
	"catalog/dto"
	"catalog/middleware"
	"catalog/models"
	"catalog/response"
	"catalog/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	Service *services.ProductService
}

func NewProductController(svc *services.ProductService) ProductController {
	return ProductController{Service: svc}
}

func (p ProductController) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := p.Service.Create(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Product created successfully", product)
}

func (p ProductController) GetByID(c *gin.Context) {
	product, err := p.Service.GetByID(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get product successfully", product)
}

func (p ProductController) ListBySeller(c *gin.Context) {
	list, err := p.Service.ListBySeller(c.Request.Context(), c.Param("seller_id"), c.Query("minimum") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get products successfully", list)
}

// Discounts: khách đã đăng nhập chỉ thấy mã còn lượt dùng
func (p ProductController) Discounts(c *gin.Context) {
	userID, role := middleware.CurrentUser(c)
	customerID := ""
	if role == constants.RoleCustomer {
		customerID = userID
	}
	list, err := p.Service.DiscountsForProduct(c.Request.Context(), c.Param("product_id"), customerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get product discounts successfully", list)
}

func (p ProductController) FlashSale(c *gin.Context) {
	list, err := p.Service.FlashSale(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get flash sale products successfully", list)
}

func (p ProductController) TopSelling(c *gin.Context) {
	list, err := p.Service.TopSelling(c.Request.Context(), queryInt(c, "limit", constants.DefaultTopSelling))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get top selling products successfully", list)
}

func (p ProductController) ByIDs(c *gin.Context) {
	var req dto.ProductIDsRequest
	if !bindJSON(c, &req) {
		return
	}
	list, err := p.Service.ByIDs(c.Request.Context(), req.ProductIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get products successfully", list)
}

func (p ProductController) Search(c *gin.Context) {
	req := dto.SearchRequest{
		Query:     c.Query("query"),
		PageQuery: dto.PageQuery{Page: queryInt(c, "page", 1), Limit: queryInt(c, "limit", constants.DefaultPageSize)},
	}
	p.respondSearch(c, req.PageQuery, func() (*dto.SearchResult, error) {
		return p.Service.Search(c.Request.Context(), &req)
	})
}

func (p ProductController) Filter(c *gin.Context) {
	var req dto.FilterRequest
	if !bindJSON(c, &req) {
		return
	}
	p.respondSearch(c, req.PageQuery, func() (*dto.SearchResult, error) {
		return p.Service.Filter(c.Request.Context(), &req)
	})
}

func (p ProductController) respondSearch(c *gin.Context, q dto.PageQuery, run func() (*dto.SearchResult, error)) {
	result, err := run()
	if err != nil {
		response.Error(c, err)
		return
	}
	page, limit, _ := q.Normalize()
	response.SuccessWithPagination(c, "Search products successfully", result.Products, page, limit, result.Total)
}

func (p ProductController) Refresh(c *gin.Context) {
	count, err := p.Service.Reindex(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Products reindexed successfully", gin.H{"indexed": count})
}

func (p ProductController) Update(c *gin.Context) {
	var req dto.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := p.Service.Update(c.Request.Context(), currentUserID(c), c.Param("product_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Product updated successfully", product)
}

func (p ProductController) ToggleActive(c *gin.Context) {
	product, err := p.Service.ToggleActive(c.Request.Context(), currentUserID(c), c.Param("product_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Product status updated successfully", product)
}

func (p ProductController) AddStock(c *gin.Context) {
	p.stock(c, p.Service.AddStock)
}

func (p ProductController) DelStock(c *gin.Context) {
	p.stock(c, p.Service.DelStock)
}

func (p ProductController) stock(c *gin.Context, fn func(ctx context.Context, sellerID, id string, req *dto.StockRequest) (*models.ProductVariant, error)) {
	var req dto.StockRequest
	if !bindJSON(c, &req) {
		return
	}
	variant, err := fn(c.Request.Context(), currentUserID(c), c.Param("product_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Stock updated successfully", variant)
}

func (p ProductController) Delete(c *gin.Context) {
	if err := p.Service.Delete(c.Request.Context(), currentUserID(c), c.Param("product_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Product deleted successfully", nil)
}

func (p ProductController) Logs(c *gin.Context) {
	logs, err := p.Service.Logs(c.Request.Context(), currentUserID(c), c.Param("product_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get product logs successfully", logs)
}
