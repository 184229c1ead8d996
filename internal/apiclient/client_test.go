package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"resume-studio/internal/bootstrap"
	"resume-studio/internal/crawler"
	"resume-studio/internal/session"
	"resume-studio/internal/shared/config"
	"resume-studio/internal/users"
	"resume-studio/resume/model"
)

func newSession(t *testing.T) *session.Store {
	t.Helper()
	s := session.New("")
	if err := s.Init(); err != nil {
		t.Fatalf("session init: %v", err)
	}
	return s
}

func backend(t *testing.T) *httptest.Server {
	t.Helper()
	app, err := bootstrap.Build(context.Background(), config.Config{
		Env:                "dev",
		LocalStoreDir:      t.TempDir(),
		ObjectStoreType:    "local",
		LLMProvider:        "placeholder",
		QueueBackend:       "none",
		AdminEmails:        []string{"admin@example.com"},
		RateLimitPerMinute: 6000,
	})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		_ = app.Close()
	})
	return srv
}

func TestAttachesBearerTokenFromSession(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	sess := newSession(t)
	c := New(srv.URL, sess)
	if _, err := c.Templates(context.Background()); err != nil {
		t.Fatalf("templates: %v", err)
	}
	if got != "" {
		t.Fatalf("expected no auth header without token, got %q", got)
	}

	if err := sess.Set("tok-123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := c.Templates(context.Background()); err != nil {
		t.Fatalf("templates: %v", err)
	}
	if got != "Bearer tok-123" {
		t.Fatalf("auth header = %q", got)
	}
}

func TestDecodesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"code":"llm_bad_output","message":"model returned garbage"}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Optimize(context.Background(), "text", model.OptimizeSummary, "en")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Code != "llm_bad_output" || apiErr.Message != "model returned garbage" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if StatusOf(err) != http.StatusBadGateway {
		t.Fatalf("StatusOf = %d", StatusOf(err))
	}
}

func TestScoreNormalizesSnakeCase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/match" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"overall_score":58,"skill_match":40,"missing_keywords":["React"]}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL, nil).Score(context.Background(), "resume", "jd")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if res.Score != 58 || res.SkillMatch == nil || *res.SkillMatch != 40 || len(res.MissingKeywords) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestResumeRoundTripAgainstBackend(t *testing.T) {
	srv := backend(t)
	ctx := context.Background()
	c := New(srv.URL, newSession(t))

	if _, err := c.ListResumes(ctx, 1, 10); StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %v", err)
	}
	if _, err := c.Register(ctx, users.NewUser{Email: "ann@example.com", Password: "correct-horse-1", FullName: "Ann"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	local := model.New("Backend resume")
	created, err := c.Create(ctx, local)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.ID == local.ID {
		t.Fatalf("expected server-assigned id, got %q", created.ID)
	}

	created.PersonalInfo.FullName = "Ann Lee"
	updated, err := c.Update(ctx, created, model.StatusPublished)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PersonalInfo.FullName != "Ann Lee" || updated.Status != model.StatusPublished {
		t.Fatalf("unexpected update %+v", updated)
	}

	list, err := c.ListResumes(ctx, 1, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %d", err, len(list))
	}

	dup, err := c.Duplicate(ctx, created.ID)
	if err != nil || dup.ID == created.ID {
		t.Fatalf("duplicate: %v %+v", err, dup)
	}

	ok, err := c.DeleteResume(ctx, dup.ID)
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = c.DeleteResume(ctx, dup.ID)
	if err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}

	tpls, err := c.Templates(ctx)
	if err != nil || len(tpls) != 6 {
		t.Fatalf("templates: %v %d", err, len(tpls))
	}
}

func TestScoreWithoutProviderSurfacesUnavailable(t *testing.T) {
	srv := backend(t)
	ctx := context.Background()
	c := New(srv.URL, newSession(t))
	if _, err := c.Register(ctx, users.NewUser{Email: "bob@example.com", Password: "correct-horse-1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := c.Score(ctx, "Go engineer", "Go developer wanted")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 APIError, got %v", err)
	}
}

func TestAdminAPIAgainstBackend(t *testing.T) {
	srv := backend(t)
	ctx := context.Background()
	c := New(srv.URL, newSession(t))
	if _, err := c.Register(ctx, users.NewUser{Email: "admin@example.com", Password: "correct-horse-1"}); err != nil {
		t.Fatalf("register admin: %v", err)
	}

	created, err := c.CreateUser(ctx, users.NewUser{Email: "carol@example.com", Password: "correct-horse-1"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := c.SetUserStatus(ctx, created.ID, users.StatusDisabled); err != nil {
		t.Fatalf("disable: %v", err)
	}
	list, err := c.ListUsers(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("list users: %v %d", err, len(list))
	}

	task, err := c.CreateCrawlerTask(ctx, crawler.NewTask{Query: "golang berlin", Frequency: crawler.FrequencyDaily})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := c.RunCrawlerTask(ctx, task.ID); err != nil {
		t.Fatalf("run task: %v", err)
	}
	if err := c.DeleteCrawlerTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Users != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if err := c.DeleteUser(ctx, created.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
}
