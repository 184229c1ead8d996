package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"resume-studio/internal/shared/metrics"
	"resume-studio/internal/shared/telemetry"
)

// Scorer produces a MatchResult for a resume and job description.
type Scorer interface {
	Score(ctx context.Context, resumeText, jobDescription string) (MatchResult, error)
}

type Service struct {
	Repo   Repo
	Scorer Scorer
}

func NewService(repo Repo, scorer Scorer) *Service {
	return &Service{Repo: repo, Scorer: scorer}
}

// Request is the POST /match payload.
type Request struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
	ResumeID       string `json:"resumeId"`
	JobTitle       string `json:"jobTitle"`
}

// Match scores the request and stores a report. A failed report write does not fail the match.
func (s *Service) Match(ctx context.Context, userID string, req Request) (MatchResult, error) {
	metrics.MatchRequests.Inc()
	if strings.TrimSpace(req.ResumeText) == "" || strings.TrimSpace(req.JobDescription) == "" {
		metrics.MatchFailures.Inc()
		return MatchResult{}, fmt.Errorf("%w: resumeText and jobDescription are required", ErrInvalidInput)
	}
	res, err := s.Scorer.Score(ctx, req.ResumeText, req.JobDescription)
	if err != nil {
		metrics.MatchFailures.Inc()
		return MatchResult{}, err
	}

	report := Report{
		ID:       uuid.NewString(),
		UserID:   userID,
		ResumeID: strings.TrimSpace(req.ResumeID),
		JobTitle: strings.TrimSpace(req.JobTitle),
		Result:   res,
	}
	if _, err := s.Repo.Create(ctx, report); err != nil {
		telemetry.Error("match.report_store_failed", map[string]any{"user_id": userID, "error": err})
	}
	telemetry.Info("match.scored", map[string]any{"user_id": userID, "reportId": report.ID, "score": res.Score})
	return res, nil
}

func (s *Service) Reports(ctx context.Context, userID string, limit, offset int) ([]Report, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.Repo.Count(ctx)
}
