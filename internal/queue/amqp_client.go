package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/streadway/amqp"

	"resume-studio/internal/shared/telemetry"
)

// AMQPClient publishes and consumes crawl messages on a durable RabbitMQ queue.
type AMQPClient struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewAMQPClient dials the broker and declares the queue.
func NewAMQPClient(url, queueName string) (*AMQPClient, error) {
	queueName = strings.TrimSpace(queueName)
	if queueName == "" {
		return nil, fmt.Errorf("AMQP_QUEUE is required")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}
	return &AMQPClient{conn: conn, ch: ch, queue: queueName}, nil
}

// Send publishes a persistent message to the default exchange.
func (a *AMQPClient) Send(ctx context.Context, msg CrawlMessage) error {
	body, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode amqp message: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	err = a.ch.Publish(
		"",
		a.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			CorrelationId: msg.RequestID,
			Body:          body,
		},
	)
	if err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// Consume acks after handle succeeds and requeues once on failure.
func (a *AMQPClient) Consume(ctx context.Context, handle HandlerFunc) error {
	deliveries, err := a.ch.Consume(
		a.queue,
		"",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("amqp consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("amqp delivery channel closed")
			}
			msg, err := DecodeMessage(d.Body)
			if err != nil {
				telemetry.Warn("queue.amqp.bad_message", map[string]any{"error": err, "bodyLen": len(d.Body)})
				_ = d.Reject(false)
				continue
			}
			if err := handle(ctx, msg); err != nil {
				telemetry.Error("queue.amqp.handle_failed", map[string]any{"taskId": msg.TaskID, "redelivered": d.Redelivered, "error": err})
				_ = d.Nack(false, !d.Redelivered)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Close releases the channel and connection.
func (a *AMQPClient) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ch != nil {
		_ = a.ch.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}

var (
	_ Client   = (*AMQPClient)(nil)
	_ Consumer = (*AMQPClient)(nil)
)
