package middleware

import (
	"errors"
	"net/http"

	"socialdl/internal/model"
	"socialdl/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns handler panics into a 500 JSON envelope. A panic with
// http.ErrAbortHandler is re-raised so net/http drops the connection;
// handlers use it to abort a response whose headers are already sent.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			logger.FromContext(c).Error("Panic recovered",
				zap.Any("panic", rec),
				zap.String("path", c.Request.URL.Path),
				zap.Stack("stack"))

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{
				Error: "Internal server error",
			})
		}()
		c.Next()
	}
}
