package templates

import "context"

type Repo interface {
	Create(ctx context.Context, t Template) (Template, error)
	List(ctx context.Context, activeOnly bool) ([]Template, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Template, error)
	Delete(ctx context.Context, id string) error
}
