package ai

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestOptimizeEndpoint(t *testing.T) {
	router := newRouter(&Service{LLM: &fakeLLM{out: `{"text":"Sharper summary"}`}})
	resp := post(router, "/api/v1/ai/optimize", `{"text":"I code","kind":"summary","language":"en"}`)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Sharper summary") {
		t.Fatalf("optimize: %d %s", resp.Code, resp.Body.String())
	}
}

func TestOptimizeEndpointRejectsUnknownKind(t *testing.T) {
	router := newRouter(&Service{LLM: &fakeLLM{}})
	resp := post(router, "/api/v1/ai/optimize", `{"text":"I code","kind":"haiku"}`)
	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), "validation_error") {
		t.Fatalf("expected 400, got %d %s", resp.Code, resp.Body.String())
	}
}

func TestOptimizeEndpointWithoutProvider(t *testing.T) {
	router := newRouter(NewService(nil))
	resp := post(router, "/api/v1/ai/optimize", `{"text":"I code","kind":"skills"}`)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestAIJobSearchEndpoint(t *testing.T) {
	router := newRouter(&Service{LLM: &fakeLLM{out: `{"jobs":[{"title":"SRE","company":"Globex"}]}`}})
	resp := post(router, "/api/v1/jobs/search/ai", `{"query":"sre"}`)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"Globex"`) {
		t.Fatalf("search: %d %s", resp.Code, resp.Body.String())
	}
}
