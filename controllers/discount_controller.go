package controllers

import (
	"catalog/dto"
	"catalog/response"
	"catalog/services"

	"github.com/gin-gonic/gin"
)

type DiscountController struct {
	Service *services.DiscountService
	Usage   *services.DiscountUsageService
}

func NewDiscountController(svc *services.DiscountService, usage *services.DiscountUsageService) DiscountController {
	return DiscountController{Service: svc, Usage: usage}
}

func (d DiscountController) Create(c *gin.Context) {
	var req dto.CreateDiscountRequest
	if !bindJSON(c, &req) {
		return
	}
	discount, err := d.Service.Create(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Discount created successfully", discount)
}

func (d DiscountController) GetByID(c *gin.Context) {
	discount, err := d.Service.GetByID(c.Request.Context(), c.Param("discount_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get discount successfully", discount)
}

func (d DiscountController) ListBySeller(c *gin.Context) {
	list, err := d.Service.ListBySeller(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get discounts successfully", list)
}

func (d DiscountController) Toggle(c *gin.Context) {
	discount, err := d.Service.Toggle(c.Request.Context(), currentUserID(c), c.Param("discount_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Discount status updated successfully", discount)
}

func (d DiscountController) Apply(c *gin.Context) {
	discount, err := d.Service.Apply(c.Request.Context(), currentUserID(c), c.Param("discount_id"), c.Param("product_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Discount applied successfully", discount)
}

func (d DiscountController) Remove(c *gin.Context) {
	discount, err := d.Service.Remove(c.Request.Context(), currentUserID(c), c.Param("discount_id"), c.Param("product_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Discount removed successfully", discount)
}

func (d DiscountController) Delete(c *gin.Context) {
	if err := d.Service.Delete(c.Request.Context(), currentUserID(c), c.Param("discount_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Discount deleted successfully", nil)
}

func (d DiscountController) Refresh(c *gin.Context) {
	result, err := d.Service.RefreshAllStatuses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Discount statuses refreshed", result)
}

func (d DiscountController) RecordUsage(c *gin.Context) {
	var req dto.RecordUsageRequest
	if !bindJSON(c, &req) {
		return
	}
	usage, err := d.Usage.RecordUsage(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Discount usage recorded", usage)
}

func (d DiscountController) UsageByDiscount(c *gin.Context) {
	list, err := d.Usage.ListByDiscount(c.Request.Context(), currentUserID(c), c.Param("discount_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get discount usages successfully", list)
}

func (d DiscountController) UsageSummary(c *gin.Context) {
	summary, err := d.Usage.Summary(c.Request.Context(), currentUserID(c), c.Param("discount_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get discount usage summary successfully", summary)
}

func (d DiscountController) UsageByProduct(c *gin.Context) {
	list, err := d.Usage.ListByProductAndCustomer(c.Request.Context(), c.Param("product_id"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get discount usages successfully", list)
}
