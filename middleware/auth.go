package middleware

import (
	apperrors "catalog/errors"
	"catalog/response"
	"catalog/services"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// AuthMiddleware xử lý authentication; roles rỗng nghĩa là mọi user đã đăng nhập
func AuthMiddleware(parser *services.TokenParser, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, apperrors.ErrCodeMissingToken, "Authorization token is required")
			return
		}

		identity, err := parser.Parse(authHeader)
		if err != nil {
			message := "Invalid token"
			if appErr := apperrors.GetAppError(err); appErr != nil {
				message = appErr.Message
			}
			response.Unauthorized(c, apperrors.ErrCodeInvalidToken, message)
			return
		}

		// Kiểm tra role nếu có yêu cầu
		if len(roles) > 0 && !hasRole(identity.Role, roles) {
			response.Forbidden(c)
			return
		}

		// Lưu thông tin user vào context
		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextUserRole, identity.Role)
		c.Next()
	}
}

// OptionalAuth gắn user vào context nếu token hợp lệ, không chặn request ẩn danh
func OptionalAuth(parser *services.TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			if identity, err := parser.Parse(authHeader); err == nil {
				c.Set(ContextUserID, identity.UserID)
				c.Set(ContextUserRole, identity.Role)
			}
		}
		c.Next()
	}
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CurrentUser trả về userID và role đã được AuthMiddleware gắn vào
func CurrentUser(c *gin.Context) (string, string) {
	return c.GetString(ContextUserID), c.GetString(ContextUserRole)
}
