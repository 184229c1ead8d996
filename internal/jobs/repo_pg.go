package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-studio/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const postingColumns = `id, title, company, location, description, url, salary, source, created_at`

func (r *PGRepo) Insert(ctx context.Context, postings []Posting) (int, error) {
	if len(postings) == 0 {
		return 0, nil
	}
	const query = `
INSERT INTO job_postings (id, title, company, location, description, url, salary, source, dedup_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (dedup_key) DO NOTHING`
	stored := 0
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		for _, p := range postings {
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			if p.CreatedAt.IsZero() {
				p.CreatedAt = time.Now().UTC()
			}
			res, err := tx.ExecContext(ctx, query,
				p.ID, p.Title, p.Company, p.Location, p.Description, p.URL, p.Salary, p.Source, p.DedupKey(), p.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert posting %q: %w", p.Title, err)
			}
			if n, err := res.RowsAffected(); err == nil && n > 0 {
				stored++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stored, nil
}

func (r *PGRepo) Search(ctx context.Context, query string, limit int) ([]Posting, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return r.List(ctx, limit, 0)
	}
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+postingColumns+` FROM job_postings
WHERE title ILIKE $1 OR company ILIKE $1 OR location ILIKE $1 OR description ILIKE $1
ORDER BY created_at DESC
LIMIT $2`, "%"+q+"%", limit)
	if err != nil {
		return nil, err
	}
	return scanPostings(rows)
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Posting, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+postingColumns+` FROM job_postings ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanPostings(rows)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
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
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_postings`).Scan(&n)
	return n, err
}

func scanPostings(rows *sql.Rows) ([]Posting, error) {
	defer rows.Close()
	out := []Posting{}
	for rows.Next() {
		var p Posting
		if err := rows.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.Description, &p.URL, &p.Salary, &p.Source, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
