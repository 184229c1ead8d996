package templates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMemoryRepoSeedsBuiltins(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	items, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 6 || items[0].ID != "modern" || items[5].ID != "timeline" {
		t.Fatalf("unexpected builtins %+v", items)
	}
	for _, tpl := range items {
		if !tpl.Renderable() {
			t.Fatalf("builtin %s not renderable", tpl.ID)
		}
	}
}

func TestCreateSlugifiesAndRejectsDuplicates(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()
	tpl, err := svc.Create(ctx, NewTemplate{Name: "  Bold Creative! "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tpl.ID != "bold-creative" || tpl.Status != StatusActive || tpl.Renderable() {
		t.Fatalf("unexpected template %+v", tpl)
	}
	if _, err := svc.Create(ctx, NewTemplate{ID: "modern", Name: "Modern 2"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := svc.Create(ctx, NewTemplate{Name: " "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestInactiveHiddenFromUsers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService(NewMemoryRepo())
	router := gin.New()
	h := NewHandler(svc)
	h.RegisterRoutes(router.Group("/api/v1"))
	h.RegisterAdminRoutes(router.Group("/api/v1/admin"))

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/templates/classic/status", strings.NewReader(`{"status":"inactive"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("status: %d %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil))
	if strings.Contains(resp.Body.String(), `"classic"`) {
		t.Fatalf("inactive template listed: %s", resp.Body.String())
	}
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/admin/templates", nil))
	if !strings.Contains(resp.Body.String(), `"classic"`) {
		t.Fatalf("admin list missing inactive template: %s", resp.Body.String())
	}
}
