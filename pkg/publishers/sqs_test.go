package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/samvad-hq/samvad-httpclient/internal/domain"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSPublisherSendSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      noopLogger{},
	}

	evt := NewEvent(domain.ProbeResult{TargetID: "api", Reachable: true}, "")
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	for name, want := range map[string]string{"target_id": "api", "status": "up"} {
		attr, ok := client.input.MessageAttributes[name]
		if !ok || aws.ToString(attr.StringValue) != want {
			t.Fatalf("%s attribute missing or wrong: %#v", name, attr)
		}
		if aws.ToString(attr.DataType) != "String" {
			t.Fatalf("%s DataType should be String, got %#v", name, attr.DataType)
		}
	}
	if body := aws.ToString(client.input.MessageBody); !strings.Contains(body, `"target_id":"api"`) {
		t.Fatalf("MessageBody missing target_id: %s", body)
	}
}

func TestSQSPublisherSendError(t *testing.T) {
	sendErr := errors.New("throttled")
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   &fakeSQSClient{err: sendErr},
		log:      noopLogger{},
	}

	err := pub.Publish(context.Background(), Event{TargetID: "api"})
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestNewSQSPublisherRequiresConfig(t *testing.T) {
	if _, err := newSQSPublisher(context.Background(), Config{ID: "q", Type: TypeSQS}, nil); err == nil {
		t.Fatalf("expected error without sqs block")
	}
}
