package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware records request counts and durations per route template.
func Middleware(recorder Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		recorder.IncRequestsTotal(endpoint, c.Writer.Status())
		recorder.ObserveRequestDuration(endpoint, time.Since(start))
	}
}
