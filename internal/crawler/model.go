package crawler

import (
	"errors"
	"strings"
	"time"
)

type Frequency string

const (
	FrequencyManual Frequency = "manual"
	FrequencyHourly Frequency = "hourly"
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyManual, FrequencyHourly, FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

// Interval is how often a task repeats. Manual tasks return 0.
func (f Frequency) Interval() time.Duration {
	switch f {
	case FrequencyHourly:
		return time.Hour
	case FrequencyDaily:
		return 24 * time.Hour
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusPaused
}

// Task is a saved crawl query.
type Task struct {
	ID        string     `json:"id"`
	Query     string     `json:"query"`
	Source    string     `json:"source"`
	Frequency Frequency  `json:"frequency"`
	Status    Status     `json:"status"`
	LastRunAt *time.Time `json:"lastRunAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Due reports whether an active scheduled task should run at now.
func (t Task) Due(now time.Time) bool {
	if t.Status != StatusActive {
		return false
	}
	interval := t.Frequency.Interval()
	if interval == 0 {
		return false
	}
	return t.LastRunAt == nil || !now.Before(t.LastRunAt.Add(interval))
}

const DefaultSource = "ai"

var (
	ErrNotFound     = errors.New("crawler task not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrQueueMissing = errors.New("queue not configured")
)

func normalizeSource(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultSource
	}
	return s
}
