package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/globalenglish-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route template.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			// Raw paths of unknown routes would explode label cardinality.
			path = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
