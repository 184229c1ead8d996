package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/shared/metrics"
	"resume-studio/internal/shared/server/respond"
	"resume-studio/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope. A panic after the body started is only logged.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			metrics.HandlerPanics.Inc()
			telemetry.Error("http.panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"user_id":    UserIDFromContext(c),
				"panic":      rec,
				"stack":      string(debug.Stack()),
				"route":      c.FullPath(),
				"method":     c.Request.Method,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "unexpected server error", nil)
		}()
		c.Next()
	}
}
