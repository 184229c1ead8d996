package crawler

import (
	"context"
	"time"

	"resume-studio/internal/shared/telemetry"
)

const DefaultTick = time.Minute

// Schedule calls EnqueueDue on every tick until ctx is cancelled.
func (s *Service) Schedule(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = DefaultTick
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.EnqueueDue(ctx)
			if err != nil {
				telemetry.Error("crawler.schedule_failed", map[string]any{"error": err})
				continue
			}
			if n > 0 {
				telemetry.Info("crawler.schedule_tick", map[string]any{"enqueued": n})
			}
		}
	}
}
