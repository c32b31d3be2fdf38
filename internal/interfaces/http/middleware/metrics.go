package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/prometheus"
)

// unmatchedPath labels requests that hit no route, keeping label cardinality
// bounded.
const unmatchedPath = "unmatched"

// Metrics records request count and latency per route template. A nil metrics
// set turns the middleware into a pass-through.
func Metrics(metrics *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		prometheus.RecordHTTPRequest(metrics, c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

//Personal.AI order the ending
