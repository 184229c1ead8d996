package jobs

import "context"

type Repo interface {
	// Insert stores postings and skips any whose dedup key already exists. It returns the number stored.
	Insert(ctx context.Context, postings []Posting) (int, error)
	Search(ctx context.Context, query string, limit int) ([]Posting, error)
	List(ctx context.Context, limit, offset int) ([]Posting, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
