package controllers

import (
	"catalog/dto"
	apperrors "catalog/errors"
	"catalog/response"
	"catalog/services"

	"github.com/gin-gonic/gin"
)

type FeedbackController struct {
	Service *services.FeedbackService
}

func NewFeedbackController(svc *services.FeedbackService) FeedbackController {
	return FeedbackController{Service: svc}
}

func (f FeedbackController) Create(c *gin.Context) {
	var req dto.CreateFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	feedback, err := f.Service.Create(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Feedback created successfully", feedback)
}

func (f FeedbackController) Reply(c *gin.Context) {
	var req dto.ReplyFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	feedback, err := f.Service.Reply(c.Request.Context(), currentUserID(c), c.Param("feedback_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Reply feedback successfully", feedback)
}

func (f FeedbackController) Delete(c *gin.Context) {
	if err := f.Service.Delete(c.Request.Context(), currentUserID(c), c.Param("feedback_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Feedback deleted successfully", nil)
}

func (f FeedbackController) ByProduct(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, apperrors.ErrCodeValidation, "Invalid query parameters")
		return
	}
	list, total, err := f.Service.ByProduct(c.Request.Context(), c.Param("product_id"), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, limit, _ := q.Normalize()
	response.SuccessWithPagination(c, "Get feedbacks successfully", list, page, limit, total)
}

func (f FeedbackController) BySeller(c *gin.Context) {
	var q dto.SellerFeedbackQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, apperrors.ErrCodeValidation, "Invalid query parameters")
		return
	}
	list, total, err := f.Service.BySeller(c.Request.Context(), currentUserID(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, limit, _ := q.Normalize()
	response.SuccessWithPagination(c, "Get feedbacks successfully", list, page, limit, total)
}

func (f FeedbackController) Rating(c *gin.Context) {
	summary, err := f.Service.Rating(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Get product rating successfully", summary)
}
