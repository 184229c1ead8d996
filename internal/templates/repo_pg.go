package templates

import (
	"context"
	"database/sql"
	"errors"

	"resume-studio/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const templateColumns = `id, name, description, preview_url, status, created_at`

func (r *PGRepo) Create(ctx context.Context, t Template) (Template, error) {
	query := `
INSERT INTO templates (id, name, description, preview_url, status, created_at)
VALUES ($1, $2, $3, $4, $5, now())
RETURNING ` + templateColumns
	out, err := scanTemplate(r.DB.QueryRowContext(ctx, query, t.ID, t.Name, t.Description, t.PreviewURL, string(t.Status)))
	if err != nil && db.IsUniqueViolation(err) {
		return Template{}, ErrConflict
	}
	return out, err
}

func (r *PGRepo) List(ctx context.Context, activeOnly bool) ([]Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates`
	if activeOnly {
		query += ` WHERE status = 'active'`
	}
	query += ` ORDER BY created_at, id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status) (Template, error) {
	query := `UPDATE templates SET status = $2 WHERE id = $1 RETURNING ` + templateColumns
	return scanTemplate(r.DB.QueryRowContext(ctx, query, id, string(status)))
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (Template, error) {
	var t Template
	var status string
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.PreviewURL, &status, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Template{}, ErrNotFound
		}
		return Template{}, err
	}
	t.Status = Status(status)
	return t, nil
}
