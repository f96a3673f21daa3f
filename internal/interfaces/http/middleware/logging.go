package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"subconverter/internal/shared/logger"
)

// Logger returns a gin middleware that logs each request's method, path,
// status and latency through the process-wide slog logger, replacing the
// teacher's zap-based gin.LoggerWithFormatter with the same
// severity-by-status-code shape.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		log := logger.With("component", "http")

		switch {
		case status >= 500:
			log.Error("request completed", "method", c.Request.Method, "path", path, "query", query, "status", status, "latency", latency)
		case status >= 400:
			log.Warn("request completed", "method", c.Request.Method, "path", path, "query", query, "status", status, "latency", latency)
		default:
			log.Info("request completed", "method", c.Request.Method, "path", path, "query", query, "status", status, "latency", latency)
		}
	}
}
