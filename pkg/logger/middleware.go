package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestIDKey is the gin context key holding the request ID
const RequestIDKey = "request_id"

// GinLogger returns a middleware for logging HTTP requests. Requests
// whose handler panics, including deliberate connection aborts, are
// logged before the panic continues.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		defer func() {
			rec := recover()
			fields := []zap.Field{
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
				zap.Int("status", c.Writer.Status()),
				zap.Duration("duration", time.Since(startTime)),
				zap.Int("body_size", c.Writer.Size()),
			}
			if rec == nil {
				Logger.Info("HTTP Request", fields...)
				return
			}
			Logger.Warn("HTTP Request", append(fields, zap.Bool("aborted", true))...)
			panic(rec)
		}()

		c.Next()
	}
}

// FromContext returns the logger annotated with the request ID, if any
func FromContext(c *gin.Context) *zap.Logger {
	if id := c.GetString(RequestIDKey); id != "" {
		return Logger.With(zap.String("request_id", id))
	}
	return Logger
}
