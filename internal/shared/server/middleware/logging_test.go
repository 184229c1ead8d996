package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/shared/telemetry"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })
	return &buf
}

func logLines(t *testing.T, buf *bytes.Buffer, msg string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if payload["msg"] == msg {
			out = append(out, payload)
		}
	}
	return out
}

func TestLoggingTagsUserAndResume(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	router := gin.New()
	iss := testIssuer(t)
	router.Use(RequestID(), Auth(iss), Logging())
	router.GET("/api/v1/resumes/:id", func(c *gin.Context) {
		c.Set("resumeId", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/r-1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, iss, "u1", "user"))
	router.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, buf, "request.complete")
	if len(lines) != 1 {
		t.Fatalf("expected one request line, got %d:\n%s", len(lines), buf.String())
	}
	got := lines[0]
	for _, key := range []string{"request_id", "user_id", "user_role", "resumeId", "duration_ms", "status", "route"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("missing log field %s in %v", key, got)
		}
	}
	if got["user_id"] != "u1" || got["resumeId"] != "r-1" || got["route"] != "/api/v1/resumes/:id" || got["level"] != "info" {
		t.Fatalf("unexpected line %v", got)
	}
}

func TestLoggingLevelFollowsStatusAndSkipsProbes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	router := gin.New()
	router.Use(Logging())
	router.GET("/api/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/api/v1/broken", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, path := range []string{"/api/v1/health", "/api/v1/missing", "/api/v1/broken"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	lines := logLines(t, buf, "request.complete")
	if len(lines) != 2 {
		t.Fatalf("health probe should not be logged, got %d lines", len(lines))
	}
	if lines[0]["level"] != "warn" || lines[1]["level"] != "error" {
		t.Fatalf("levels = %v, %v", lines[0]["level"], lines[1]["level"])
	}
}
