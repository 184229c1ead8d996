package matching

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

func (p *PGRepo) Create(ctx context.Context, r Report) (Report, error) {
	payload, err := json.Marshal(r.Result)
	if err != nil {
		return Report{}, fmt.Errorf("encode match result: %w", err)
	}
	query := `
INSERT INTO match_reports (id, user_id, resume_id, job_title, result, created_at)
VALUES ($1, $2, $3, $4, $5, now())
RETURNING created_at`
	if err := p.DB.QueryRowContext(ctx, query, r.ID, r.UserID, nullableString(r.ResumeID), r.JobTitle, payload).Scan(&r.CreatedAt); err != nil {
		return Report{}, err
	}
	return r, nil
}

func (p *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Report, error) {
	rows, err := p.DB.QueryContext(ctx, `
SELECT id, user_id, resume_id, job_title, result, created_at
FROM match_reports
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Report{}
	for rows.Next() {
		var r Report
		var resumeID sql.NullString
		var payload []byte
		if err := rows.Scan(&r.ID, &r.UserID, &resumeID, &r.JobTitle, &payload, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.ResumeID = resumeID.String
		// Reports written by older builds may use other key spellings.
		if r.Result, err = Normalize(payload); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PGRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := p.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM match_reports`).Scan(&n)
	return n, err
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
