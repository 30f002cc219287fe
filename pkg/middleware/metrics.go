package middleware

import (
	"strconv"
	"time"

	"socialdl/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per route template. The
// record is deferred so aborted streams are counted too.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			endpoint := c.FullPath()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			metrics.RecordHTTPRequest(
				c.Request.Method,
				endpoint,
				strconv.Itoa(c.Writer.Status()),
				time.Since(start).Seconds(),
			)
		}()
		c.Next()
	}
}
