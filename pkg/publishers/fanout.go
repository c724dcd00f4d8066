package publishers

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Fanout delivers each event to every publisher concurrently.
type Fanout struct {
	publishers []Publisher
}

// NewFanout builds a dispatcher over the non-nil publishers in pubs.
func NewFanout(pubs []Publisher) *Fanout {
	f := &Fanout{}
	for _, p := range pubs {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	return f
}

// Publish hands evt to every publisher and returns how many accepted it.
// Failures are joined in publisher order and never stop the other deliveries.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f.Size() == 0 {
		return 0, nil
	}

	errs := make([]error, len(f.publishers))
	var g errgroup.Group
	for i, p := range f.publishers {
		g.Go(func() error {
			if err := p.Publish(ctx, evt); err != nil {
				errs[i] = fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	delivered := 0
	for _, err := range errs {
		if err == nil {
			delivered++
		}
	}
	return delivered, errors.Join(errs...)
}

// Size returns the number of active publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}

// Close releases every publisher that holds a connection.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	return closeAll(f.publishers)
}
