package publishers

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// pubsubTopic is the one call pubsubPublisher makes: publish a message and
// wait for the server-assigned id.
type pubsubTopic interface {
	Publish(ctx context.Context, msg *pubsub.Message) (string, error)
}

// gcpTopic adapts *pubsub.Topic, whose Publish is asynchronous, to pubsubTopic.
type gcpTopic struct {
	topic *pubsub.Topic
}

func (t gcpTopic) Publish(ctx context.Context, msg *pubsub.Message) (string, error) {
	return t.topic.Publish(ctx, msg).Get(ctx)
}

// pubsubPublisher implements the Publisher interface for Google Cloud Pub/Sub.
type pubsubPublisher struct {
	id      string
	topic   pubsubTopic
	closeFn func() error
	log     Logger
}

// newPubSubPublisher connects to the configured project and binds the topic.
// The emulator is used when PUBSUB_EMULATOR_HOST is set.
func newPubSubPublisher(ctx context.Context, cfg Config, log Logger) (Publisher, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("publisher %q missing pubsub configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	topic := client.Topic(cfg.PubSub.Topic)
	return &pubsubPublisher{
		id:    cfg.ID,
		topic: gcpTopic{topic: topic},
		closeFn: func() error {
			topic.Stop()
			return client.Close()
		},
		log: ensureLogger(log),
	}, nil
}

func (p *pubsubPublisher) ID() string   { return p.id }
func (p *pubsubPublisher) Type() string { return TypePubSub }

// Publish sends the event as JSON with target_id and status attributes and
// waits until the server acknowledges it.
func (p *pubsubPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	id, err := p.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"target_id": evt.TargetID,
			"status":    evt.Status,
		},
	})
	if err != nil {
		p.log.ErrorObj("pubsub publisher publish failed", "publisher_pubsub_error", map[string]any{
			"publisher_id": p.id,
			"target_id":    evt.TargetID,
			"error":        err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	p.log.DebugObj("pubsub publisher delivered event", "publisher_pubsub_delivery", map[string]any{
		"publisher_id": p.id,
		"target_id":    evt.TargetID,
		"message_id":   id,
	})
	return nil
}

// Close flushes pending messages and closes the client.
func (p *pubsubPublisher) Close() error {
	if p.closeFn == nil {
		return nil
	}
	return p.closeFn()
}
