package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-studio/resume/model"
)

type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, title, template_id, status, version, document, updated_at`

func (r *PGRepo) Create(ctx context.Context, doc model.ResumeDocument) (model.ResumeDocument, error) {
	payload, err := encodeDocument(doc)
	if err != nil {
		return model.ResumeDocument{}, err
	}
	query := `
INSERT INTO resumes (id, user_id, title, template_id, status, version, document, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 1, $6, now(), now())
RETURNING ` + resumeColumns
	return scanResume(r.DB.QueryRowContext(ctx, query,
		doc.ID, doc.UserID, doc.Title, string(doc.TemplateID), string(doc.Status), payload))
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (model.ResumeDocument, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1 AND user_id = $2`
	return scanResume(r.DB.QueryRowContext(ctx, query, id, userID))
}

func (r *PGRepo) List(ctx context.Context, userID string, limit, offset int) ([]model.ResumeDocument, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ResumeDocument{}
	for rows.Next() {
		doc, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, doc model.ResumeDocument) (model.ResumeDocument, error) {
	payload, err := encodeDocument(doc)
	if err != nil {
		return model.ResumeDocument{}, err
	}
	query := `
UPDATE resumes
SET title = $3, template_id = $4, status = $5, document = $6, version = version + 1, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING ` + resumeColumns
	return scanResume(r.DB.QueryRowContext(ctx, query,
		doc.ID, doc.UserID, doc.Title, string(doc.TemplateID), string(doc.Status), payload))
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1 AND user_id = $2`, id, userID)
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
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM resumes`).Scan(&n)
	return n, err
}

// encodeDocument stores only the editable content; identity and bookkeeping live in columns.
func encodeDocument(doc model.ResumeDocument) ([]byte, error) {
	doc.ID, doc.UserID, doc.Version, doc.Status = "", "", 0, ""
	doc.LastModified = time.Time{}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode resume document: %w", err)
	}
	return payload, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (model.ResumeDocument, error) {
	var (
		id, userID, title, templateID, status string
		version                               int64
		payload                               []byte
		updatedAt                             time.Time
	)
	if err := row.Scan(&id, &userID, &title, &templateID, &status, &version, &payload, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ResumeDocument{}, ErrNotFound
		}
		return model.ResumeDocument{}, err
	}
	var doc model.ResumeDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return model.ResumeDocument{}, fmt.Errorf("decode resume %s: %w", id, err)
	}
	doc = doc.Clone()
	doc.ID = id
	doc.UserID = userID
	doc.Title = title
	doc.TemplateID = model.TemplateID(templateID)
	doc.Status = model.Status(status)
	doc.Version = version
	doc.LastModified = updatedAt
	return doc, nil
}
