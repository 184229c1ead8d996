package matching

import (
	"errors"
	"time"
)

// Report is a persisted scoring result.
type Report struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	ResumeID  string      `json:"resumeId,omitempty"`
	JobTitle  string      `json:"jobTitle"`
	Result    MatchResult `json:"result"`
	CreatedAt time.Time   `json:"createdAt"`
}

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("match report not found")
)
