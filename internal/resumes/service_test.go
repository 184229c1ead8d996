package resumes

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"resume-studio/internal/shared/storage/object"
	"resume-studio/internal/shared/storage/object/local"
	"resume-studio/resume/export"
	"resume-studio/resume/model"
)

type stubParser struct {
	doc  model.ResumeDocument
	err  error
	text string
}

func (p *stubParser) ParseResume(ctx context.Context, text string) (model.ResumeDocument, error) {
	p.text = text
	return p.doc, p.err
}

func fakePDF(ctx context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.4 " + html[:10]), nil
}

func newTestService(t *testing.T) (*Service, *local.Store) {
	t.Helper()
	store := local.New(t.TempDir())
	svc := NewService(NewMemoryRepo(), store, &export.Exporter{Print: fakePDF}, &stubParser{})
	return svc, store
}

func TestCreateAssignsIDAndVersion(t *testing.T) {
	svc, _ := newTestService(t)
	doc := model.ResumeDocument{ID: "client-id", TemplateID: "neon", Experience: []model.Experience{{Company: "Acme"}}}
	out, err := svc.Create(context.Background(), "u1", doc)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.ID == "" || out.ID == "client-id" {
		t.Fatalf("expected server-assigned id, got %q", out.ID)
	}
	if out.Version != 1 || out.UserID != "u1" || out.Title != "Untitled resume" || out.Status != model.StatusDraft {
		t.Fatalf("unexpected doc %+v", out)
	}
	if out.TemplateID != model.TemplateModern || out.Experience[0].ID == "" {
		t.Fatalf("document not normalized: %+v", out)
	}
}

func TestUpdateIncrementsVersionAndScopesOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, _ := svc.Create(ctx, "u1", model.ResumeDocument{Title: "CV"})

	created.Skills = "Go"
	updated, err := svc.Update(ctx, "u1", created.ID, created, model.StatusPublished)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 2 || updated.Status != model.StatusPublished || updated.Skills != "Go" {
		t.Fatalf("unexpected update %+v", updated)
	}
	if _, err := svc.Update(ctx, "u2", created.ID, created, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}
	if _, err := svc.Get(ctx, "u2", created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user can read resume: %v", err)
	}
}

func TestUpdateRejectsInvalidDocument(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, _ := svc.Create(ctx, "u1", model.ResumeDocument{Title: "CV"})
	created.Title = strings.Repeat("x", 500)
	_, err := svc.Update(ctx, "u1", created.ID, created, "")
	var verr *model.ValidationError
	if !errors.Is(err, ErrInvalidInput) || !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDuplicateMakesFreshDraft(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	src, _ := svc.Create(ctx, "u1", model.ResumeDocument{
		Title:     "Main",
		Status:    model.StatusPublished,
		Education: []model.Education{{School: "MIT"}},
	})
	cp, err := svc.Duplicate(ctx, "u1", src.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if cp.ID == src.ID || cp.Title != "Main (copy)" || cp.Status != model.StatusDraft {
		t.Fatalf("unexpected copy %+v", cp)
	}
	if cp.Education[0].ID == src.Education[0].ID || cp.Education[0].School != "MIT" {
		t.Fatalf("entries not re-keyed: %+v vs %+v", cp.Education, src.Education)
	}
}

func TestExportArchivesPDF(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	doc, _ := svc.Create(ctx, "u1", model.ResumeDocument{Title: "CV", PersonalInfo: model.PersonalInfo{FullName: "Ann"}})

	art, err := svc.Export(ctx, "u1", doc.ID, export.FormatPDF)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if art.ContentType != "application/pdf" || !strings.HasPrefix(string(art.Body), "%PDF") {
		t.Fatalf("unexpected artifact %+v", art)
	}
	rc, err := store.Open(ctx, object.ExportKey("u1", doc.ID, 1, "pdf"))
	if err != nil {
		t.Fatalf("archived pdf missing: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != string(art.Body) {
		t.Fatalf("archived body differs")
	}

	html, err := svc.Export(ctx, "u1", doc.ID, export.FormatHTML)
	if err != nil || !strings.Contains(string(html.Body), "Ann") {
		t.Fatalf("html export: %v", err)
	}
}

func TestImportParsesUploadedText(t *testing.T) {
	svc, _ := newTestService(t)
	parser := &stubParser{doc: model.ResumeDocument{
		PersonalInfo: model.PersonalInfo{FullName: "Ann Lee"},
		Experience:   []model.Experience{{Company: "Acme", Position: "Engineer"}},
	}}
	svc.Parser = parser

	doc, err := svc.Import(context.Background(), "u1", Upload{
		FileName:    "ann-cv.txt",
		ContentType: "text/plain",
		Body:        strings.NewReader("Ann Lee\nEngineer at Acme"),
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if parser.text != "Ann Lee\nEngineer at Acme" {
		t.Fatalf("parser got %q", parser.text)
	}
	if doc.Title != "ann-cv" || doc.ID == "" || doc.Experience[0].ID == "" || doc.Status != model.StatusDraft {
		t.Fatalf("unexpected imported doc %+v", doc)
	}
}

func TestImportRejectsUnsupportedFile(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Import(context.Background(), "u1", Upload{
		FileName:    "photo.png",
		ContentType: "image/png",
		Body:        strings.NewReader("\x89PNG\r\n\x1a\n"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
