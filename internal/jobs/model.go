package jobs

import (
	"errors"
	"strings"
	"time"
)

// Posting is a job listing, either crawled into the database or returned by AI search.
type Posting struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	URL         string    `json:"url,omitempty"`
	Salary      string    `json:"salary,omitempty"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// DedupKey identifies the same listing across crawls.
func (p Posting) DedupKey() string {
	if u := strings.TrimSpace(p.URL); u != "" {
		return "url:" + strings.ToLower(u)
	}
	return "tc:" + strings.ToLower(strings.TrimSpace(p.Title)) + "|" + strings.ToLower(strings.TrimSpace(p.Company))
}

var (
	ErrNotFound     = errors.New("job posting not found")
	ErrInvalidInput = errors.New("invalid input")
)
