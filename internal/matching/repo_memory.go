package matching

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	reports []Report
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (m *MemoryRepo) Create(ctx context.Context, r Report) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.reports = append(m.reports, r)
	return r, nil
}

func (m *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Report{}
	for _, r := range m.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []Report{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepo) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports), nil
}
