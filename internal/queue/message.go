package queue

import (
	"encoding/json"
	"errors"
	"strings"
)

// CrawlMessage asks the crawler worker to run one task.
type CrawlMessage struct {
	TaskID     string `json:"taskId"`
	Query      string `json:"query"`
	Source     string `json:"source"`
	RequestID  string `json:"requestId,omitempty"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

const MessageVersion = 1

var (
	ErrEmptyBody     = errors.New("empty message body")
	ErrMissingTaskID = errors.New("missing task id")
)

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg CrawlMessage) ([]byte, error) {
	if msg.Version == 0 {
		msg.Version = MessageVersion
	}
	return json.Marshal(msg)
}

// DecodeMessage parses and validates a queue payload.
func DecodeMessage(payload []byte) (CrawlMessage, error) {
	if strings.TrimSpace(string(payload)) == "" {
		return CrawlMessage{}, ErrEmptyBody
	}
	var msg CrawlMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return CrawlMessage{}, err
	}
	if strings.TrimSpace(msg.TaskID) == "" {
		return msg, ErrMissingTaskID
	}
	return msg, nil
}
