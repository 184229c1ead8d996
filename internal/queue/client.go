package queue

import "context"

// Client sends messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg CrawlMessage) error
}

// HandlerFunc processes one delivered message. A non-nil error leaves the message for redelivery
// where the backend supports it.
type HandlerFunc func(ctx context.Context, msg CrawlMessage) error

// Consumer receives messages until ctx is cancelled.
type Consumer interface {
	Consume(ctx context.Context, handle HandlerFunc) error
}
