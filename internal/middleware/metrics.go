package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mbdsaraiva/academia-api/internal/service"
)

// unmatchedRoute labels requests that hit no registered route, so requests to
// arbitrary paths cannot grow the label set.
const unmatchedRoute = "unmatched"

// Metrics records request duration per route template. Paths in skip, such
// as the scrape and health endpoints, are not observed.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
