package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/titans-club/portal-api/internal/service"
)

// Metrics records per-route request counts and latencies. The scrape
// endpoint itself is left out so pollers don't dominate the histograms.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		// Unmatched routes collapse into one label to keep cardinality down.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
