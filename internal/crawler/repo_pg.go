package crawler

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

const taskColumns = `id, query, source, frequency, status, last_run_at, created_at`

func (r *PGRepo) Create(ctx context.Context, task Task) (Task, error) {
	query := `
INSERT INTO crawler_tasks (id, query, source, frequency, status, created_at)
VALUES ($1, $2, $3, $4, $5, now())
RETURNING ` + taskColumns
	return scanTask(r.DB.QueryRowContext(ctx, query,
		task.ID, task.Query, task.Source, string(task.Frequency), string(task.Status)))
}

func (r *PGRepo) Get(ctx context.Context, id string) (Task, error) {
	return scanTask(r.DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM crawler_tasks WHERE id = $1`, id))
}

func (r *PGRepo) List(ctx context.Context) ([]Task, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+taskColumns+` FROM crawler_tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status) (Task, error) {
	query := `UPDATE crawler_tasks SET status = $2 WHERE id = $1 RETURNING ` + taskColumns
	return scanTask(r.DB.QueryRowContext(ctx, query, id, string(status)))
}

func (r *PGRepo) MarkRun(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE crawler_tasks SET last_run_at = $2 WHERE id = $1`, id, at.UTC())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM crawler_tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM crawler_tasks`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var task Task
	var frequency, status string
	var lastRun sql.NullTime
	err := row.Scan(&task.ID, &task.Query, &task.Source, &frequency, &status, &lastRun, &task.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	task.Frequency = Frequency(frequency)
	task.Status = Status(status)
	if lastRun.Valid {
		t := lastRun.Time
		task.LastRunAt = &t
	}
	return task, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
