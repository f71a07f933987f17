package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
	"github.com/parceldesk/shiptrack-backend/internal/services"
)

// RequestLogger writes the structured access log and hands every inbound
// (method, endpoint) pair to the audit notifier, regardless of outcome.
func RequestLogger(log *logger.Logger, notifier services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Header("X-Request-Id", requestID)

		method := strings.ToUpper(c.Request.Method)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if notifier != nil {
			notifier.RecordRequest(method, path)
		}

		c.Next()

		if log == nil {
			return
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"method", method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
		}
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
