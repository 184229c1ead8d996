package resumes

import (
	"context"

	"resume-studio/resume/model"
)

// Repo persists resumes. Every lookup is scoped to the owning user.
type Repo interface {
	Create(ctx context.Context, doc model.ResumeDocument) (model.ResumeDocument, error)
	Get(ctx context.Context, userID, id string) (model.ResumeDocument, error)
	List(ctx context.Context, userID string, limit, offset int) ([]model.ResumeDocument, error)
	// Update replaces the document and increments its version.
	Update(ctx context.Context, doc model.ResumeDocument) (model.ResumeDocument, error)
	Delete(ctx context.Context, userID, id string) error
	Count(ctx context.Context) (int, error)
}
