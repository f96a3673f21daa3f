// Package middleware holds the small gin middleware stack this service
// runs: CORS, access logging, and panic recovery. There is no auth
// middleware here — spec.md §1 states the service "does not authenticate
// requests."
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS returns a gin middleware implementing spec.md §6's CORS contract
// verbatim: allow every origin, and honor preflight OPTIONS with a
// wildcard Allow-Headers. Unlike the teacher's allow-listed-origin
// version, this service has no notion of a trusted frontend origin to
// restrict to.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Headers", "*")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
