package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"subconverter/internal/shared/logger"
)

// Recovery returns a gin middleware that recovers from panics in a
// handler, logs the stack trace, and responds with a plain-text 500
// rather than letting gin's default recovery dump the panic to stdout.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Get().Error("panic recovered",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"panic", recovered,
			"stack", string(debug.Stack()),
		)
		c.String(http.StatusInternalServerError, "Internal server error")
		c.Abort()
	})
}
