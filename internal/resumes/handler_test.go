package resumes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-studio/resume/model"
)

func newRouter(t *testing.T, svc *Service, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	NewHandler(svc, nil).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func doJSON(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestResumeCRUDFlow(t *testing.T) {
	svc, _ := newTestService(t)
	router := newRouter(t, svc, "u1")

	resp := doJSON(router, http.MethodPost, "/api/v1/resumes", `{"title":"Backend CV","templateId":"classic"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", resp.Code, resp.Body.String())
	}
	var created model.ResumeDocument
	_ = json.Unmarshal(resp.Body.Bytes(), &created)

	update := `{"document":{"title":"Backend CV","templateId":"classic","skills":"Go\nSQL"},"status":"published"}`
	resp = doJSON(router, http.MethodPut, "/api/v1/resumes/"+created.ID, update)
	if resp.Code != http.StatusOK {
		t.Fatalf("update: %d %s", resp.Code, resp.Body.String())
	}
	var updated model.ResumeDocument
	_ = json.Unmarshal(resp.Body.Bytes(), &updated)
	if updated.Version != 2 || updated.Status != model.StatusPublished || updated.ID != created.ID {
		t.Fatalf("unexpected update %+v", updated)
	}

	resp = doJSON(router, http.MethodGet, "/api/v1/resumes?page=1&pageSize=5", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Backend CV") {
		t.Fatalf("list: %d %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(router, http.MethodGet, "/api/v1/resumes/"+created.ID+"/export?format=txt", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Header().Get("Content-Disposition"), "Backend-CV.txt") {
		t.Fatalf("export: %d %v", resp.Code, resp.Header())
	}

	resp = doJSON(router, http.MethodDelete, "/api/v1/resumes/"+created.ID, "")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", resp.Code)
	}
	resp = doJSON(router, http.MethodGet, "/api/v1/resumes/"+created.ID, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", resp.Code)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc, _ := newTestService(t)
	router := newRouter(t, svc, "u1")
	resp := doJSON(router, http.MethodGet, "/api/v1/resumes/x/export?format=docx", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestValidationErrorListsFields(t *testing.T) {
	svc, _ := newTestService(t)
	router := newRouter(t, svc, "u1")
	resp := doJSON(router, http.MethodPost, "/api/v1/resumes", `{"title":"`+strings.Repeat("t", 300)+`"}`)
	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), "fields") {
		t.Fatalf("expected validation details, got %d %s", resp.Code, resp.Body.String())
	}
}

func TestImportEndpoint(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Parser = &stubParser{doc: model.ResumeDocument{Title: "Imported"}}
	router := newRouter(t, svc, "u1")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "cv.txt")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = fw.Write([]byte("Ann Lee, Go engineer"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated || !strings.Contains(resp.Body.String(), "Imported") {
		t.Fatalf("import: %d %s", resp.Code, resp.Body.String())
	}
}
