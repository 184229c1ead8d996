package matching

import "context"

type Repo interface {
	Create(ctx context.Context, r Report) (Report, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Report, error)
	Count(ctx context.Context) (int, error)
}
