package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"resume-studio/internal/shared/telemetry"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSClient sends and receives crawl messages through AWS SQS.
type SQSClient struct {
	client   sqsAPI
	queueURL string
}

// NewSQSClient constructs an SQS-backed queue client.
func NewSQSClient(ctx context.Context, queueURL, region string) (*SQSClient, error) {
	queueURL = strings.TrimSpace(queueURL)
	if queueURL == "" {
		return nil, fmt.Errorf("SQS_QUEUE_URL is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SQSClient{client: sqs.NewFromConfig(cfg), queueURL: queueURL}, nil
}

// Send delivers a message to the configured SQS queue.
func (s *SQSClient) Send(ctx context.Context, msg CrawlMessage) error {
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode sqs message: %w", err)
	}
	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(payload)),
	})
	if err != nil {
		return fmt.Errorf("sqs send message: %w", err)
	}
	return nil
}

// Consume long-polls the queue. Messages are deleted only after handle succeeds,
// except undecodable ones which are dropped.
func (s *SQSClient) Consume(ctx context.Context, handle HandlerFunc) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueURL),
			MaxNumberOfMessages: 5,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("sqs receive: %w", err)
		}
		for _, m := range out.Messages {
			msg, err := DecodeMessage([]byte(aws.ToString(m.Body)))
			if err == nil {
				err = handle(ctx, msg)
				if err != nil {
					telemetry.Error("queue.sqs.handle_failed", map[string]any{"taskId": msg.TaskID, "error": err})
					continue
				}
			} else {
				telemetry.Warn("queue.sqs.bad_message", map[string]any{"messageId": aws.ToString(m.MessageId), "error": err})
			}
			s.delete(ctx, m.ReceiptHandle)
		}
	}
}

func (s *SQSClient) delete(ctx context.Context, receipt *string) {
	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: receipt,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		telemetry.Warn("queue.sqs.delete_failed", map[string]any{"error": err})
	}
}

var (
	_ Client   = (*SQSClient)(nil)
	_ Consumer = (*SQSClient)(nil)
)
