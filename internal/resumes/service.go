package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-studio/internal/extract"
	"resume-studio/internal/shared/metrics"
	"resume-studio/internal/shared/storage/object"
	"resume-studio/internal/shared/telemetry"
	"resume-studio/resume/export"
	"resume-studio/resume/model"
)

// Exporter renders a document to a downloadable artifact.
type Exporter interface {
	Export(ctx context.Context, doc model.ResumeDocument, format export.Format) (export.Artifact, error)
}

// Parser turns extracted resume text into a document.
type Parser interface {
	ParseResume(ctx context.Context, text string) (model.ResumeDocument, error)
}

type Service struct {
	Repo     Repo
	Store    object.Store
	Exporter Exporter
	Parser   Parser
}

func NewService(repo Repo, store object.Store, exporter Exporter, parser Parser) *Service {
	return &Service{Repo: repo, Store: store, Exporter: exporter, Parser: parser}
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]model.ResumeDocument, error) {
	return s.Repo.List(ctx, userID, limit, offset)
}

func (s *Service) Get(ctx context.Context, userID, id string) (model.ResumeDocument, error) {
	return s.Repo.Get(ctx, userID, id)
}

// Create stores doc under a new server-assigned id.
func (s *Service) Create(ctx context.Context, userID string, doc model.ResumeDocument) (model.ResumeDocument, error) {
	doc = doc.Normalize()
	doc.ID = uuid.NewString()
	doc.UserID = userID
	if strings.TrimSpace(doc.Title) == "" {
		doc.Title = "Untitled resume"
	}
	if err := validate(doc); err != nil {
		return model.ResumeDocument{}, err
	}
	out, err := s.Repo.Create(ctx, doc)
	if err != nil {
		return model.ResumeDocument{}, err
	}
	metrics.ResumeSaves.Inc()
	telemetry.Info("resume.created", map[string]any{"user_id": userID, "resumeId": out.ID})
	return out, nil
}

// Update replaces the content of an existing resume. The id and owner come from the caller, not doc.
func (s *Service) Update(ctx context.Context, userID, id string, doc model.ResumeDocument, status model.Status) (model.ResumeDocument, error) {
	if _, err := s.Repo.Get(ctx, userID, id); err != nil {
		return model.ResumeDocument{}, err
	}
	if status != "" {
		doc.Status = status
	}
	doc = doc.Normalize()
	doc.ID = id
	doc.UserID = userID
	if err := validate(doc); err != nil {
		return model.ResumeDocument{}, err
	}
	out, err := s.Repo.Update(ctx, doc)
	if err != nil {
		return model.ResumeDocument{}, err
	}
	metrics.ResumeSaves.Inc()
	return out, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.Repo.Delete(ctx, userID, id)
}

// Duplicate copies a resume as a new draft with fresh entry ids.
func (s *Service) Duplicate(ctx context.Context, userID, id string) (model.ResumeDocument, error) {
	src, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return model.ResumeDocument{}, err
	}
	cp := src.Clone()
	for i := range cp.Education {
		cp.Education[i].ID = ""
	}
	for i := range cp.Experience {
		cp.Experience[i].ID = ""
	}
	for i := range cp.Projects {
		cp.Projects[i].ID = ""
	}
	cp.Title = strings.TrimSpace(src.Title) + " (copy)"
	cp.Status = model.StatusDraft
	return s.Create(ctx, userID, cp)
}

// Export renders the resume. PDFs are also archived per version; archive failures are only logged.
func (s *Service) Export(ctx context.Context, userID, id string, format export.Format) (export.Artifact, error) {
	doc, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return export.Artifact{}, err
	}
	if s.Exporter == nil {
		return export.Artifact{}, errors.New("exporter not configured")
	}
	start := time.Now()
	art, err := s.Exporter.Export(ctx, doc, format)
	metrics.ExportDuration.ObserveSince(start)
	if err != nil {
		return export.Artifact{}, err
	}
	metrics.ResumeExports.Inc()

	if s.Store != nil && art.Format == export.FormatPDF {
		key := object.ExportKey(userID, doc.ID, int(doc.Version), string(art.Format))
		if _, err := s.Store.Put(ctx, key, art.ContentType, bytes.NewReader(art.Body)); err != nil {
			telemetry.Warn("resume.export_archive_failed", map[string]any{"resumeId": doc.ID, "error": err})
		}
	}
	return art, nil
}

// Upload is an imported file.
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// Import stores the upload, extracts its text, parses it and creates a new resume.
func (s *Service) Import(ctx context.Context, userID string, up Upload) (model.ResumeDocument, error) {
	if s.Store == nil || s.Parser == nil {
		return model.ResumeDocument{}, errors.New("import not configured")
	}
	key, err := object.ImportKey(userID, up.FileName)
	if err != nil {
		return model.ResumeDocument{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	size, err := s.Store.Put(ctx, key, up.ContentType, io.LimitReader(up.Body, extract.MaxUploadBytes+1))
	if err != nil {
		return model.ResumeDocument{}, fmt.Errorf("store upload: %w", err)
	}
	if size > extract.MaxUploadBytes {
		return model.ResumeDocument{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, extract.MaxUploadBytes)
	}

	text, err := extract.FromStore(ctx, s.Store, key, up.ContentType, up.FileName)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupported) || errors.Is(err, extract.ErrEmptyText) || errors.Is(err, extract.ErrTooLarge) {
			return model.ResumeDocument{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return model.ResumeDocument{}, err
	}
	parsed, err := s.Parser.ParseResume(ctx, text)
	if err != nil {
		return model.ResumeDocument{}, err
	}
	if strings.TrimSpace(parsed.Title) == "" {
		parsed.Title = strings.TrimSuffix(up.FileName, fileExt(up.FileName))
	}
	parsed.Status = model.StatusDraft
	telemetry.Info("resume.imported", map[string]any{"user_id": userID, "key": key, "bytes": size, "chars": len(text)})
	return s.Create(ctx, userID, parsed)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.Repo.Count(ctx)
}

func validate(doc model.ResumeDocument) error {
	if err := model.Validate(doc); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %w", ErrInvalidInput, verr)
		}
		return err
	}
	return nil
}

func fileExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}
