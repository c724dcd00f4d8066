package publishers

import "context"

// Publisher sends transition events to a downstream sink (webhook, SQS, SNS, Pub/Sub).
// Publishers that hold connections also implement io.Closer.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
