package controllers

import (
	"catalog/dto"
	"catalog/response"
	"catalog/services"

	"github.com/gin-gonic/gin"
)

type VariantController struct {
	Service *services.VariantService
}

func NewVariantController(svc *services.VariantService) VariantController {
	return VariantController{Service: svc}
}

func (v VariantController) Create(c *gin.Context) {
	var req dto.CreateVariantRequest
	if !bindJSON(c, &req) {
		return
	}
	variant, err := v.Service.Create(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Variant created successfully", variant)
}

func (v VariantController) BulkCreate(c *gin.Context) {
	var req dto.BulkCreateVariantRequest
	if !bindJSON(c, &req) {
		return
	}
	list, err := v.Service.BulkCreate(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Variants created successfully", list)
}

func (v VariantController) GetBySKU(c *gin.Context) {
	variant, err := v.Service.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get variant successfully", variant)
}

func (v VariantController) ByCategory(c *gin.Context) {
	groups, err := v.Service.ByCategory(c.Request.Context(), c.Param("category_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get variants successfully", groups)
}

func (v VariantController) ByGroup(c *gin.Context) {
	list, err := v.Service.ByGroup(c.Request.Context(), c.Param("group"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get variants successfully", list)
}

func (v VariantController) Update(c *gin.Context) {
	var req dto.UpdateVariantRequest
	if !bindJSON(c, &req) {
		return
	}
	variant, err := v.Service.Update(c.Request.Context(), c.Param("sku"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Variant updated successfully", variant)
}

func (v VariantController) DeleteGroup(c *gin.Context) {
	deleted, err := v.Service.DeleteGroup(c.Request.Context(), c.Param("group"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Variant group deleted successfully", gin.H{"deleted": deleted})
}

func (v VariantController) Delete(c *gin.Context) {
	if err := v.Service.Delete(c.Request.Context(), c.Param("sku")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Variant deleted successfully", nil)
}
