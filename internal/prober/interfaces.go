package prober

import (
	"context"

	"github.com/samvad-hq/samvad-httpclient/pkg/httpclient"
	"github.com/samvad-hq/samvad-httpclient/pkg/publishers"
)

// Checker performs the reachability request. *httpclient.Client satisfies it.
type Checker interface {
	Check(ctx context.Context, url string) bool
	Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error)
}

// EventPublisher delivers transition events and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
