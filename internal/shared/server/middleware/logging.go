package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/shared/telemetry"
)

var quietRoutes = map[string]bool{
	"/api/v1/health": true,
	"/metrics":       true,
}

// entityKeys are context keys handlers set to tag the resource a request touched.
var entityKeys = []string{"resumeId", "taskId", "reportId", "templateId"}

// Logging writes one request.complete line per request. 5xx log at error, 4xx at warn.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || quietRoutes[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"status":      status,
			"bytes":       c.Writer.Size(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"user_role":   UserRoleFromContext(c),
			"client_ip":   c.ClientIP(),
		}
		for _, key := range entityKeys {
			if v := c.GetString(key); v != "" {
				fields[key] = v
			}
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}
