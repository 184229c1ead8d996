package templates

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// NewTemplate is the admin create payload. ID defaults to a slug of Name.
type NewTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PreviewURL  string `json:"previewUrl"`
}

func (s *Service) Create(ctx context.Context, in NewTemplate) (Template, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Template{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	id := slugify(in.ID)
	if id == "" {
		id = slugify(name)
	}
	if id == "" {
		return Template{}, fmt.Errorf("%w: id must contain letters or digits", ErrInvalidInput)
	}
	return s.Repo.Create(ctx, Template{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		PreviewURL:  strings.TrimSpace(in.PreviewURL),
		Status:      StatusActive,
	})
}

// ListActive returns templates offered to users.
func (s *Service) ListActive(ctx context.Context) ([]Template, error) {
	return s.Repo.List(ctx, true)
}

func (s *Service) ListAll(ctx context.Context) ([]Template, error) {
	return s.Repo.List(ctx, false)
}

func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Template, error) {
	if !status.Valid() {
		return Template{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.Repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}
