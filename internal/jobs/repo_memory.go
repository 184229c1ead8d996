package jobs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepo struct {
	mu       sync.RWMutex
	postings map[string]Posting
	keys     map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{postings: make(map[string]Posting), keys: make(map[string]string)}
}

func (r *MemoryRepo) Insert(ctx context.Context, postings []Posting) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := 0
	for _, p := range postings {
		key := p.DedupKey()
		if _, dup := r.keys[key]; dup {
			continue
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		r.postings[p.ID] = p
		r.keys[key] = p.ID
		stored++
	}
	return stored, nil
}

func (r *MemoryRepo) Search(ctx context.Context, query string, limit int) ([]Posting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Posting{}
	for _, p := range r.sorted() {
		if q == "" || matches(p, q) {
			out = append(out, p)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Posting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.sorted()
	if offset >= len(items) {
		return []Posting{}, nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.postings[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.postings, id)
	delete(r.keys, p.DedupKey())
	return nil
}

func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.postings), nil
}

// sorted returns postings newest first. Callers hold the lock.
func (r *MemoryRepo) sorted() []Posting {
	items := make([]Posting, 0, len(r.postings))
	for _, p := range r.postings {
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

func matches(p Posting, q string) bool {
	for _, field := range []string{p.Title, p.Company, p.Location, p.Description} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
