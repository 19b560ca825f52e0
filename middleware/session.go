package middleware

import (
	"time"

	"catalog/response"
	"catalog/services/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID  = "X-Request-ID"
	ContextRequestID = "requestId"
)

// RequestID tạo request id nếu client chưa gửi và gán vào context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(ContextRequestID, requestID)
		c.Writer.Header().Set(HeaderRequestID, requestID)

		c.Next()
	}
}

// RequestLogger ghi method, path, status, latency kèm request id
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		format := "%s %s -> %d in %s [%s]"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, status, time.Since(start), c.GetString(ContextRequestID)}
		if status >= 500 {
			log.Error(format, args...)
			return
		}
		log.Info(format, args...)
	}
}

// Recovery trả về lỗi 500 theo envelope chung khi handler panic
func Recovery(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err interface{}) {
		log.Error("panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		response.ServerError(c)
	})
}
