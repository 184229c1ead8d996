package crawler

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tasks: make(map[string]Task)}
}

func (r *MemoryRepo) Create(ctx context.Context, task Task) (Task, error) {
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	r.tasks[task.ID] = task
	return task, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return task, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, status Status) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	task.Status = status
	r.tasks[id] = task
	return task, nil
}

func (r *MemoryRepo) MarkRun(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return ErrNotFound
	}
	at = at.UTC()
	task.LastRunAt = &at
	r.tasks[id] = task
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks), nil
}
