package middleware

import (
	"time"

	"tarabaho-web/internal/delivery/http/response"
	"tarabaho-web/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request through the application logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"request_id", c.GetString(response.RequestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			logger.Log.Error("HTTP request", attrs...)
		case status >= 400:
			logger.Log.Warn("HTTP request", attrs...)
		default:
			logger.Log.Info("HTTP request", attrs...)
		}
	}
}
