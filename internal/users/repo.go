package users

import "context"

type Repo interface {
	// Create fails with ErrConflict when the email is taken.
	Create(ctx context.Context, user User) (User, error)
	// Upsert inserts by email or refreshes profile fields; role, status and id are preserved.
	Upsert(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, limit, offset int) ([]User, error)
	UpdateRole(ctx context.Context, userID string, role Role) (User, error)
	UpdateStatus(ctx context.Context, userID string, status Status) (User, error)
	Delete(ctx context.Context, userID string) error
	Count(ctx context.Context) (int, error)
}
