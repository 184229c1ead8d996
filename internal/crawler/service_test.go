package crawler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"resume-studio/internal/jobs"
	"resume-studio/internal/queue"
)

type recordingQueue struct {
	mu   sync.Mutex
	sent []queue.CrawlMessage
	err  error
}

func (q *recordingQueue) Send(ctx context.Context, msg queue.CrawlMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, msg)
	return nil
}

type stubFinder struct {
	postings []jobs.Posting
	err      error
	query    string
}

func (f *stubFinder) SearchJobs(ctx context.Context, query string) ([]jobs.Posting, error) {
	f.query = query
	return f.postings, f.err
}

func TestCreateValidates(t *testing.T) {
	svc := NewService(NewMemoryRepo(), &recordingQueue{}, nil, nil)
	ctx := context.Background()
	if _, err := svc.Create(ctx, NewTask{Query: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := svc.Create(ctx, NewTask{Query: "go", Frequency: "yearly"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid frequency, got %v", err)
	}
	task, err := svc.Create(ctx, NewTask{Query: " golang berlin "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Query != "golang berlin" || task.Frequency != FrequencyManual || task.Status != StatusActive || task.Source != DefaultSource {
		t.Fatalf("unexpected task %+v", task)
	}
}

func TestRunNowEnqueues(t *testing.T) {
	q := &recordingQueue{}
	svc := NewService(NewMemoryRepo(), q, nil, nil)
	ctx := context.Background()
	task, _ := svc.Create(ctx, NewTask{Query: "sre"})

	if _, err := svc.RunNow(ctx, task.ID, "req-1"); err != nil {
		t.Fatalf("run now: %v", err)
	}
	if len(q.sent) != 1 || q.sent[0].TaskID != task.ID || q.sent[0].Query != "sre" || q.sent[0].RequestID != "req-1" {
		t.Fatalf("unexpected messages %+v", q.sent)
	}
	if _, err := svc.RunNow(ctx, "missing", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	svc.Queue = nil
	if _, err := svc.RunNow(ctx, task.ID, ""); !errors.Is(err, ErrQueueMissing) {
		t.Fatalf("expected queue missing, got %v", err)
	}
}

func TestDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-30 * time.Minute)
	old := now.Add(-2 * time.Hour)
	cases := []struct {
		name string
		task Task
		want bool
	}{
		{"manual never due", Task{Frequency: FrequencyManual, Status: StatusActive}, false},
		{"never run", Task{Frequency: FrequencyHourly, Status: StatusActive}, true},
		{"ran recently", Task{Frequency: FrequencyHourly, Status: StatusActive, LastRunAt: &recent}, false},
		{"interval elapsed", Task{Frequency: FrequencyHourly, Status: StatusActive, LastRunAt: &old}, true},
		{"paused", Task{Frequency: FrequencyHourly, Status: StatusPaused}, false},
		{"daily not yet", Task{Frequency: FrequencyDaily, Status: StatusActive, LastRunAt: &old}, false},
	}
	for _, tc := range cases {
		if got := tc.task.Due(now); got != tc.want {
			t.Fatalf("%s: Due = %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestEnqueueDueStampsTasks(t *testing.T) {
	q := &recordingQueue{}
	repo := NewMemoryRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, q, nil, nil)
	svc.Now = func() time.Time { return now }
	ctx := context.Background()
	hourly, _ := svc.Create(ctx, NewTask{Query: "go", Frequency: FrequencyHourly})
	_, _ = svc.Create(ctx, NewTask{Query: "manual"})

	n, err := svc.EnqueueDue(ctx)
	if err != nil || n != 1 {
		t.Fatalf("first tick: n=%d err=%v", n, err)
	}
	if q.sent[0].TaskID != hourly.ID {
		t.Fatalf("wrong task enqueued %+v", q.sent[0])
	}
	n, _ = svc.EnqueueDue(ctx)
	if n != 0 {
		t.Fatalf("task enqueued twice in the same interval")
	}
}

func TestHandleStoresPostingsAndStampsRun(t *testing.T) {
	repo := NewMemoryRepo()
	jobRepo := jobs.NewMemoryRepo()
	finder := &stubFinder{postings: []jobs.Posting{
		{Title: "Go Dev", Company: "Acme"},
		{Title: "Go Dev", Company: "acme"},
	}}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, nil, finder, jobs.NewService(jobRepo))
	svc.Now = func() time.Time { return now }
	ctx := context.Background()
	task, _ := svc.Create(ctx, NewTask{Query: "go"})

	if err := svc.Handle(ctx, queue.CrawlMessage{TaskID: task.ID, Source: "ai"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if finder.query != "go" {
		t.Fatalf("query from task not used: %q", finder.query)
	}
	items, _ := jobRepo.List(ctx, 10, 0)
	if len(items) != 1 || items[0].Source != "crawler:ai" {
		t.Fatalf("unexpected stored postings %+v", items)
	}
	got, _ := repo.Get(ctx, task.ID)
	if got.LastRunAt == nil || !got.LastRunAt.Equal(now) {
		t.Fatalf("lastRunAt not stamped: %+v", got)
	}
}

func TestHandleSearchFailure(t *testing.T) {
	svc := NewService(NewMemoryRepo(), nil, &stubFinder{err: errors.New("quota")}, jobs.NewService(jobs.NewMemoryRepo()))
	if err := svc.Handle(context.Background(), queue.CrawlMessage{TaskID: "t", Query: "go"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCreateAcceptsInitialStatus(t *testing.T) {
	svc := NewService(NewMemoryRepo(), &recordingQueue{}, nil, nil)
	ctx := context.Background()
	task, err := svc.Create(ctx, NewTask{Query: "rust", Frequency: FrequencyDaily, Status: StatusPaused})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Status != StatusPaused || task.Due(time.Now()) {
		t.Fatalf("expected paused, not due: %+v", task)
	}
	if _, err := svc.Create(ctx, NewTask{Query: "rust", Status: "archived"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}
