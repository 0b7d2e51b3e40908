package middleware

import (
	"time"

	"sikseb/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorHandler turns a panic into a JSON 500.
func ErrorHandler(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.WithField("path", c.Request.URL.Path).Errorf("panic recovered: %v", err)
				response.ServerError(c, "Terjadi kesalahan pada server")
			}
		}()

		c.Next()
	}
}

// RequestLogger logs every request at debug level, failures at warn.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": c.GetHeader("X-Request-Id"),
		})
		if c.Writer.Status() >= 500 {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}
