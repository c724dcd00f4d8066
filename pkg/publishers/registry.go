package publishers

import (
	"context"
	"fmt"
	"io"
)

// Builder creates a Publisher from a normalized config entry.
type Builder func(ctx context.Context, cfg Config, log Logger) (Publisher, error)

// Builders maps a publisher type to the Builder that constructs it.
type Builders map[string]Builder

// DefaultBuilders returns the builders for every supported publisher type.
func DefaultBuilders() Builders {
	return Builders{
		TypeHTTP:   newHTTPPublisher,
		TypeSQS:    newSQSPublisher,
		TypeSNS:    newSNSPublisher,
		TypePubSub: newPubSubPublisher,
	}
}

// Build instantiates a publisher for every entry in cfgs. On the first failure
// the publishers built so far are closed and the error is returned.
func (b Builders) Build(ctx context.Context, cfgs []Config, log Logger) ([]Publisher, error) {
	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		pub, err := b.build(ctx, cfg, log)
		if err != nil {
			closeAll(pubs)
			return nil, fmt.Errorf("build publisher %q: %w", cfg.ID, err)
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}

// build looks up the builder for cfg.Type.
func (b Builders) build(ctx context.Context, cfg Config, log Logger) (Publisher, error) {
	builder, ok := b[cfg.Type]
	if !ok || builder == nil {
		return nil, fmt.Errorf("no publisher registered for type %q", cfg.Type)
	}
	return builder(ctx, cfg, log)
}

// closeAll releases publishers that hold connections. It returns the first close error.
func closeAll(pubs []Publisher) error {
	var first error
	for _, p := range pubs {
		c, ok := p.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %s publisher[%s]: %w", p.Type(), p.ID(), err)
		}
	}
	return first
}
