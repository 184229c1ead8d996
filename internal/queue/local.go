package queue

import (
	"context"

	"resume-studio/internal/shared/telemetry"
)

// Local is an in-process queue used when no broker is configured.
type Local struct {
	ch chan CrawlMessage
}

func NewLocal(size int) *Local {
	if size <= 0 {
		size = 64
	}
	return &Local{ch: make(chan CrawlMessage, size)}
}

func (l *Local) Send(ctx context.Context, msg CrawlMessage) error {
	select {
	case l.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Local) Consume(ctx context.Context, handle HandlerFunc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-l.ch:
			if err := handle(ctx, msg); err != nil {
				telemetry.Error("queue.local.handle_failed", map[string]any{"taskId": msg.TaskID, "error": err})
			}
		}
	}
}

var (
	_ Client   = (*Local)(nil)
	_ Consumer = (*Local)(nil)
)
