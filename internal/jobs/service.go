package jobs

import (
	"context"
	"strings"

	"resume-studio/internal/shared/metrics"
	"resume-studio/internal/shared/telemetry"
)

const defaultSearchLimit = 20

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Search returns stored postings matching query, newest first.
func (s *Service) Search(ctx context.Context, query string) ([]Posting, error) {
	return s.Repo.Search(ctx, strings.TrimSpace(query), defaultSearchLimit)
}

// Store saves postings, skipping duplicates of listings already stored.
func (s *Service) Store(ctx context.Context, postings []Posting) (int, error) {
	clean := make([]Posting, 0, len(postings))
	for _, p := range postings {
		p.Title = strings.TrimSpace(p.Title)
		if p.Title == "" {
			continue
		}
		clean = append(clean, p)
	}
	n, err := s.Repo.Insert(ctx, clean)
	if err != nil {
		return 0, err
	}
	metrics.PostingsStored.Add(n)
	telemetry.Info("jobs.stored", map[string]any{"received": len(postings), "stored": n})
	return n, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Posting, error) {
	return s.Repo.List(ctx, limit, offset)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.Repo.Count(ctx)
}
