package middleware

import (
	"github.com/aman1195/risk-scan-pro/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxRequestIDLength caps ids accepted from callers
const maxRequestIDLength = 64

// RequestID middleware tags each request with an id, reusing a sane
// X-Request-ID from the caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Request = c.Request.WithContext(logger.With(c.Request.Context(), logger.RequestIDKey, requestID))

		c.Next()
	}
}

// GetRequestID gets the request ID from gin context
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		return requestID.(string)
	}
	return ""
}
