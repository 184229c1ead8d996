package crawler

import (
	"context"
	"time"
)

type Repo interface {
	Create(ctx context.Context, task Task) (Task, error)
	Get(ctx context.Context, id string) (Task, error)
	List(ctx context.Context) ([]Task, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Task, error)
	MarkRun(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
