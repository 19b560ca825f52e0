package controllers

import (
	"strconv"

	apperrors "catalog/errors"
	"catalog/middleware"
	"catalog/response"

	"github.com/gin-gonic/gin"
)

// bindJSON đọc body; lỗi decode trả về 400 ngay, rule nghiệp vụ do service kiểm tra
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		response.BadRequest(c, apperrors.ErrCodeValidation, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func currentUserID(c *gin.Context) string {
	id, _ := middleware.CurrentUser(c)
	return id
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}
