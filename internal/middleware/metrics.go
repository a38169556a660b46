package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sportsgrades-api/internal/service"
)

// Metrics returns middleware that captures request metrics using the provided service.
// Routes are labelled by their template so student ids do not explode cardinality.
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
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
