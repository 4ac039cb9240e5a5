package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"showalert/internal/infrastructure/metrics"
)

// Metrics records request count and latency per route template, so
// /shows/:id is one series regardless of the id.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordAPIRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
