package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type fakeSQS struct {
	sent    []string
	batches [][]types.Message
	deleted []string
	cancel  context.CancelFunc
}

func (f *fakeSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sent = append(f.sent, aws.ToString(in.MessageBody))
	return &sqs.SendMessageOutput{}, nil
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if len(f.batches) == 0 {
		f.cancel()
		return nil, context.Canceled
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return &sqs.ReceiveMessageOutput{Messages: batch}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func TestSQSConsumeDeletesHandledAndBadMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake := &fakeSQS{cancel: cancel, batches: [][]types.Message{{
		{Body: aws.String(`{"taskId":"ok"}`), ReceiptHandle: aws.String("r-ok")},
		{Body: aws.String(`{"taskId":"fail"}`), ReceiptHandle: aws.String("r-fail")},
		{Body: aws.String(`not json`), ReceiptHandle: aws.String("r-bad")},
	}}}
	client := &SQSClient{client: fake, queueURL: "https://sqs.example/q"}

	err := client.Consume(ctx, func(ctx context.Context, msg CrawlMessage) error {
		if msg.TaskID == "fail" {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if len(fake.deleted) != 2 || fake.deleted[0] != "r-ok" || fake.deleted[1] != "r-bad" {
		t.Fatalf("deleted = %v", fake.deleted)
	}
}

func TestSQSSendEncodesMessage(t *testing.T) {
	fake := &fakeSQS{}
	client := &SQSClient{client: fake, queueURL: "q"}
	if err := client.Send(context.Background(), CrawlMessage{TaskID: "t1", Query: "go"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(fake.sent) != 1 || fake.sent[0] == "" {
		t.Fatalf("sent = %v", fake.sent)
	}
}
