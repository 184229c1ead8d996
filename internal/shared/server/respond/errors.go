package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/shared/telemetry"
)

// ErrorBody is the error object every failing endpoint returns.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error aborts the request with the error envelope. Client errors log at warn, server errors at error.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}

// InvalidBody reports a request body that failed to bind.
func InvalidBody(c *gin.Context, err error) {
	var details any
	if err != nil {
		details = gin.H{"reason": err.Error()}
	}
	Error(c, http.StatusBadRequest, "validation_error", "invalid request body", details)
}
