package crawler

import (
	"context"
	"testing"
	"time"
)

func TestScheduleEnqueuesDueTasksUntilCancelled(t *testing.T) {
	q := &recordingQueue{}
	svc := NewService(NewMemoryRepo(), q, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := svc.Create(ctx, NewTask{Query: "go", Frequency: FrequencyHourly}); err != nil {
		t.Fatalf("create: %v", err)
	}

	done := make(chan struct{})
	go func() {
		svc.Schedule(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		q.mu.Lock()
		n := len(q.sent)
		q.mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("no task enqueued")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("schedule did not stop after cancel")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.sent) != 1 {
		t.Fatalf("hourly task enqueued %d times", len(q.sent))
	}
}
