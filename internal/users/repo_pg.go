package users

import (
	"context"
	"database/sql"
	"errors"

	"resume-studio/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, email, full_name, role, status, password_hash, picture_url, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, user User) (User, error) {
	query := `
INSERT INTO users (id, email, full_name, role, status, password_hash, picture_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
RETURNING ` + userColumns
	row := r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.FullName,
		string(user.Role),
		string(user.Status),
		nullableString(user.PasswordHash),
		nullableString(user.PictureURL),
	)
	out, err := scanUser(row)
	if err != nil && db.IsUniqueViolation(err) {
		return User{}, ErrConflict
	}
	return out, err
}

func (r *PGRepo) Upsert(ctx context.Context, user User) (User, error) {
	query := `
INSERT INTO users (id, email, full_name, role, status, picture_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
ON CONFLICT (email) DO UPDATE SET
  full_name = COALESCE(NULLIF(EXCLUDED.full_name, ''), users.full_name),
  picture_url = COALESCE(EXCLUDED.picture_url, users.picture_url),
  updated_at = now()
RETURNING ` + userColumns
	row := r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.FullName,
		string(user.Role),
		string(user.Status),
		nullableString(user.PictureURL),
	)
	return scanUser(row)
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, NormalizeEmail(email)))
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateRole(ctx context.Context, userID string, role Role) (User, error) {
	query := `UPDATE users SET role = $2, updated_at = now() WHERE id = $1 RETURNING ` + userColumns
	return scanUser(r.DB.QueryRowContext(ctx, query, userID, string(role)))
}

func (r *PGRepo) UpdateStatus(ctx context.Context, userID string, status Status) (User, error) {
	query := `UPDATE users SET status = $2, updated_at = now() WHERE id = $1 RETURNING ` + userColumns
	return scanUser(r.DB.QueryRowContext(ctx, query, userID, string(status)))
}

func (r *PGRepo) Delete(ctx context.Context, userID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var role, status string
	var passwordHash sql.NullString
	var pictureURL sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&role,
		&status,
		&passwordHash,
		&pictureURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.Role = Role(role)
	user.Status = Status(status)
	if passwordHash.Valid {
		user.PasswordHash = passwordHash.String
	}
	if pictureURL.Valid {
		user.PictureURL = pictureURL.String
	}
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
