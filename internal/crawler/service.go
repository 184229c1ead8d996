package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-studio/internal/jobs"
	"resume-studio/internal/queue"
	"resume-studio/internal/shared/metrics"
	"resume-studio/internal/shared/telemetry"
)

const maxQueryLength = 200

// JobFinder fetches postings for a crawl query.
type JobFinder interface {
	SearchJobs(ctx context.Context, query string) ([]jobs.Posting, error)
}

// PostingStore persists crawled postings.
type PostingStore interface {
	Store(ctx context.Context, postings []jobs.Posting) (int, error)
}

type Service struct {
	Repo   Repo
	Queue  queue.Client
	Finder JobFinder
	Jobs   PostingStore
	Now    func() time.Time
}

func NewService(repo Repo, q queue.Client, finder JobFinder, store PostingStore) *Service {
	return &Service{Repo: repo, Queue: q, Finder: finder, Jobs: store, Now: time.Now}
}

// NewTask is the admin create payload.
type NewTask struct {
	Query     string    `json:"query"`
	Source    string    `json:"source"`
	Frequency Frequency `json:"frequency"`
	Status    Status    `json:"status"`
}

func (s *Service) Create(ctx context.Context, in NewTask) (Task, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return Task{}, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if len(query) > maxQueryLength {
		return Task{}, fmt.Errorf("%w: query exceeds %d characters", ErrInvalidInput, maxQueryLength)
	}
	freq := in.Frequency
	if freq == "" {
		freq = FrequencyManual
	}
	if !freq.Valid() {
		return Task{}, fmt.Errorf("%w: unknown frequency %q", ErrInvalidInput, in.Frequency)
	}
	status := in.Status
	if status == "" {
		status = StatusActive
	}
	if !status.Valid() {
		return Task{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, in.Status)
	}
	task, err := s.Repo.Create(ctx, Task{
		ID:        uuid.NewString(),
		Query:     query,
		Source:    normalizeSource(in.Source),
		Frequency: freq,
		Status:    status,
	})
	if err != nil {
		return Task{}, err
	}
	telemetry.Info("crawler.task_created", map[string]any{"taskId": task.ID, "frequency": task.Frequency})
	return task, nil
}

func (s *Service) List(ctx context.Context) ([]Task, error) {
	return s.Repo.List(ctx)
}

func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Task, error) {
	if !status.Valid() {
		return Task{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.Repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.Repo.Count(ctx)
}

// RunNow enqueues a task regardless of its schedule. The crawl itself happens in the worker.
func (s *Service) RunNow(ctx context.Context, id, requestID string) (Task, error) {
	task, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if err := s.enqueue(ctx, task, requestID); err != nil {
		return Task{}, err
	}
	return task, nil
}

// EnqueueDue enqueues every active task whose interval has elapsed. It returns how many were sent.
func (s *Service) EnqueueDue(ctx context.Context) (int, error) {
	tasks, err := s.Repo.List(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	sent := 0
	for _, task := range tasks {
		if !task.Due(now) {
			continue
		}
		if err := s.enqueue(ctx, task, ""); err != nil {
			telemetry.Error("crawler.enqueue_failed", map[string]any{"taskId": task.ID, "error": err})
			continue
		}
		// Stamp now so the next tick does not enqueue the same task again while the worker is busy.
		if err := s.Repo.MarkRun(ctx, task.ID, now); err != nil {
			telemetry.Warn("crawler.mark_run_failed", map[string]any{"taskId": task.ID, "error": err})
		}
		sent++
	}
	return sent, nil
}

// Handle runs one crawl message: search, store, stamp lastRunAt.
func (s *Service) Handle(ctx context.Context, msg queue.CrawlMessage) error {
	metrics.CrawlRuns.Inc()
	start := s.now()
	if s.Finder == nil || s.Jobs == nil {
		metrics.CrawlFailures.Inc()
		return fmt.Errorf("crawler not configured")
	}
	query := strings.TrimSpace(msg.Query)
	if query == "" {
		task, err := s.Repo.Get(ctx, msg.TaskID)
		if err != nil {
			metrics.CrawlFailures.Inc()
			return err
		}
		query = task.Query
	}

	postings, err := s.Finder.SearchJobs(ctx, query)
	if err != nil {
		metrics.CrawlFailures.Inc()
		return fmt.Errorf("search %q: %w", query, err)
	}
	source := normalizeSource(msg.Source)
	for i := range postings {
		postings[i].Source = "crawler:" + source
	}
	stored, err := s.Jobs.Store(ctx, postings)
	if err != nil {
		metrics.CrawlFailures.Inc()
		return fmt.Errorf("store postings: %w", err)
	}
	if err := s.Repo.MarkRun(ctx, msg.TaskID, s.now()); err != nil {
		telemetry.Warn("crawler.mark_run_failed", map[string]any{"taskId": msg.TaskID, "error": err})
	}
	telemetry.Info("crawler.run_complete", map[string]any{
		"taskId":      msg.TaskID,
		"requestId":   msg.RequestID,
		"found":       len(postings),
		"stored":      stored,
		"duration_ms": s.now().Sub(start).Milliseconds(),
	})
	return nil
}

func (s *Service) enqueue(ctx context.Context, task Task, requestID string) error {
	if s.Queue == nil {
		return ErrQueueMissing
	}
	msg := queue.CrawlMessage{
		TaskID:     task.ID,
		Query:      task.Query,
		Source:     task.Source,
		RequestID:  requestID,
		EnqueuedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		return fmt.Errorf("enqueue task %s: %w", task.ID, err)
	}
	telemetry.Info("crawler.enqueued", map[string]any{"taskId": task.ID, "requestId": requestID})
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
