package controllers

import (
	"strconv"

	"catalog/dto"
	apperrors "catalog/errors"
	"catalog/response"
	"catalog/services"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	Service *services.CategoryService
}

func NewCategoryController(svc *services.CategoryService) CategoryController {
	return CategoryController{Service: svc}
}

func (cc CategoryController) CreateRoot(c *gin.Context) {
	var req dto.CreateRootCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := cc.Service.CreateRoot(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Category created successfully", category)
}

func (cc CategoryController) CreateBranch(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := cc.Service.CreateBranch(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Category created successfully", category)
}

func (cc CategoryController) Insert(c *gin.Context) {
	var req dto.InsertCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := cc.Service.InsertIntoHierarchy(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Category inserted successfully", category)
}

func (cc CategoryController) Update(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := cc.Service.Update(c.Request.Context(), c.Param("category_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Category updated successfully", category)
}

func (cc CategoryController) Delete(c *gin.Context) {
	if err := cc.Service.Delete(c.Request.Context(), c.Param("category_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Category deleted successfully", nil)
}

func (cc CategoryController) ListByLevel(c *gin.Context) {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil || level < 0 {
		response.BadRequest(c, apperrors.ErrCodeValidation, "level must be a non-negative integer")
		return
	}
	list, err := cc.Service.ListByLevel(c.Request.Context(), level)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get categories successfully", list)
}

func (cc CategoryController) ListChildren(c *gin.Context) {
	list, err := cc.Service.ListChildren(c.Request.Context(), c.Param("parent_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get categories successfully", list)
}

func (cc CategoryController) Path(c *gin.Context) {
	path, err := cc.Service.AncestorPath(c.Request.Context(), c.Param("category_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get category path successfully", path)
}
