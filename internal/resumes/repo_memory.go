package resumes

import (
	"context"
	"sort"
	"sync"
	"time"

	"resume-studio/resume/model"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	docs map[string]model.ResumeDocument
	now  func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[string]model.ResumeDocument), now: time.Now}
}

func (r *MemoryRepo) Create(ctx context.Context, doc model.ResumeDocument) (model.ResumeDocument, error) {
	if err := ctx.Err(); err != nil {
		return model.ResumeDocument{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.Version = 1
	doc.LastModified = r.now().UTC()
	r.docs[doc.ID] = doc.Clone()
	return doc, nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (model.ResumeDocument, error) {
	if err := ctx.Err(); err != nil {
		return model.ResumeDocument{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok || doc.UserID != userID {
		return model.ResumeDocument{}, ErrNotFound
	}
	return doc.Clone(), nil
}

func (r *MemoryRepo) List(ctx context.Context, userID string, limit, offset int) ([]model.ResumeDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.ResumeDocument{}
	for _, doc := range r.docs {
		if doc.UserID == userID {
			out = append(out, doc.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastModified.Equal(out[j].LastModified) {
			return out[i].ID < out[j].ID
		}
		return out[i].LastModified.After(out[j].LastModified)
	})
	if offset >= len(out) {
		return []model.ResumeDocument{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, doc model.ResumeDocument) (model.ResumeDocument, error) {
	if err := ctx.Err(); err != nil {
		return model.ResumeDocument{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.docs[doc.ID]
	if !ok || existing.UserID != doc.UserID {
		return model.ResumeDocument{}, ErrNotFound
	}
	doc.Version = existing.Version + 1
	doc.LastModified = r.now().UTC()
	r.docs[doc.ID] = doc.Clone()
	return doc, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.UserID != userID {
		return ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs), nil
}
