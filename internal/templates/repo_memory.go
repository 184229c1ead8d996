package templates

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps templates in insertion order and starts with the builtins.
type MemoryRepo struct {
	mu    sync.RWMutex
	order []string
	items map[string]Template
}

func NewMemoryRepo() *MemoryRepo {
	r := &MemoryRepo{items: make(map[string]Template)}
	now := time.Now().UTC()
	for _, t := range Builtins() {
		t.CreatedAt = now
		r.order = append(r.order, t.ID)
		r.items[t.ID] = t
	}
	return r
}

func (r *MemoryRepo) Create(ctx context.Context, t Template) (Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID]; ok {
		return Template{}, ErrConflict
	}
	t.CreatedAt = time.Now().UTC()
	r.order = append(r.order, t.ID)
	r.items[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) List(ctx context.Context, activeOnly bool) ([]Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Template{}
	for _, id := range r.order {
		t := r.items[id]
		if activeOnly && t.Status != StatusActive {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, status Status) (Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return Template{}, ErrNotFound
	}
	t.Status = status
	r.items[id] = t
	return t, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
