package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"resume-studio/internal/shared/metrics"
	"resume-studio/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

type retrying struct {
	base  Client
	delay time.Duration
}

// WithRetry retries once after a short pause when the failure looks transient.
func WithRetry(base Client) Client {
	if base == nil {
		return nil
	}
	return retrying{base: base, delay: retryBaseDelay}
}

func (r retrying) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := r.base.Complete(ctx, prompt)
	metrics.LLMDuration.ObserveSince(start)
	if err == nil || !ShouldRetry(err) {
		return out, err
	}

	telemetry.Warn("llm.retry", map[string]any{"attempt": 1, "error": err})
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	start = time.Now()
	out, err = r.base.Complete(ctx, prompt)
	metrics.LLMDuration.ObserveSince(start)
	return out, err
}

// ShouldRetry reports whether err is a timeout, a 5xx or a dropped connection.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotImplemented) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") || strings.Contains(msg, "unavailable") {
		return true
	}
	if strings.Contains(msg, "http status 429") {
		return true
	}
	for _, marker := range []string{"connection reset", "connection refused", "connection closed", "broken pipe", "tls handshake timeout", "eof"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
