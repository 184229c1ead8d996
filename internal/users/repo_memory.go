package users

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps users in maps keyed by id and by normalized email.
type MemoryRepo struct {
	mu      sync.RWMutex
	users   map[string]User
	byEmail map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User), byEmail: make(map[string]string)}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.findByEmail(user.Email); ok {
		return User{}, ErrConflict
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.put(user)
	return user, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	existing, ok := r.findByEmail(user.Email)
	if !ok {
		user.CreatedAt, user.UpdatedAt = now, now
		r.put(user)
		return user, nil
	}
	if user.FullName != "" {
		existing.FullName = user.FullName
	}
	if user.PictureURL != "" {
		existing.PictureURL = user.PictureURL
	}
	existing.UpdatedAt = now
	r.users[existing.ID] = existing
	return existing, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.findByEmail(email)
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, limit, offset), nil
}

func (r *MemoryRepo) UpdateRole(ctx context.Context, userID string, role Role) (User, error) {
	return r.update(ctx, userID, func(u *User) { u.Role = role })
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, userID string, status Status) (User, error) {
	return r.update(ctx, userID, func(u *User) { u.Status = status })
}

func (r *MemoryRepo) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	delete(r.byEmail, NormalizeEmail(user.Email))
	delete(r.users, userID)
	return nil
}

func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

func (r *MemoryRepo) update(ctx context.Context, userID string, fn func(*User)) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	fn(&user)
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return user, nil
}

// put and findByEmail expect r.mu to be held.
func (r *MemoryRepo) put(user User) {
	r.users[user.ID] = user
	r.byEmail[NormalizeEmail(user.Email)] = user.ID
}

func (r *MemoryRepo) findByEmail(email string) (User, bool) {
	id, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		return User{}, false
	}
	u, ok := r.users[id]
	return u, ok
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
