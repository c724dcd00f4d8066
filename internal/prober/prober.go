package prober

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-httpclient/internal/domain"
	"github.com/samvad-hq/samvad-httpclient/internal/logger"
	"github.com/samvad-hq/samvad-httpclient/internal/storage"
	"github.com/samvad-hq/samvad-httpclient/pkg/httpclient"
	"github.com/samvad-hq/samvad-httpclient/pkg/publishers"
	"github.com/samvad-hq/samvad-httpclient/pkg/targets"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Service probes targets and publishes an event whenever one changes state.
type Service struct {
	checker     Checker
	publisher   EventPublisher
	store       storage.Store
	log         logger.Logger
	concurrency int
	now         func() time.Time
}

// NewService wires a prober. A nil publisher or store disables that step.
func NewService(checker Checker, publisher EventPublisher, store storage.Store, log logger.Logger, concurrency int) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Service{
		checker:     checker,
		publisher:   publisher,
		store:       store,
		log:         log,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Run probes every enabled target once and returns the results in target order.
// Per-target storage and publish failures are joined into the returned error;
// they never stop other targets from being probed.
func (s *Service) Run(ctx context.Context, list []targets.Target) ([]domain.ProbeResult, error) {
	if s == nil || s.checker == nil {
		return nil, fmt.Errorf("prober service is not initialized")
	}

	enabled := make([]targets.Target, 0, len(list))
	for _, t := range list {
		if t.IsEnabled() {
			enabled = append(enabled, t)
		}
	}
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no targets configured for probing")
	}

	results := make([]domain.ProbeResult, len(enabled))
	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, t := range enabled {
		g.Go(func() error {
			res := s.probe(ctx, t)
			results[i] = res
			if err := s.record(ctx, res); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

func (s *Service) probe(ctx context.Context, t targets.Target) domain.ProbeResult {
	start := s.now()

	var up bool
	if len(t.Headers) == 0 {
		up = s.checker.Check(ctx, t.URL)
	} else {
		req := httpclient.NewRequest(httpclient.MethodGet, t.URL, nil).SetHeaders(t.Headers)
		resp, err := s.checker.Send(ctx, req)
		up = err == nil && resp.IsSuccess()
	}

	return domain.ProbeResult{
		TargetID:   t.ID,
		TargetName: t.Name,
		URL:        t.URL,
		Reachable:  up,
		CheckedAt:  start.UTC(),
		ElapsedMs:  s.now().Sub(start).Milliseconds(),
	}
}

// record compares res with the stored state, publishes on change and stores the new state.
// A transition that no publisher accepted is not stored so it is retried on the next run.
func (s *Service) record(ctx context.Context, res domain.ProbeResult) error {
	previous := ""
	if s.store != nil {
		up, found, err := s.store.LastStatus(res.TargetID)
		if err != nil {
			return fmt.Errorf("read status for target %s: %w", res.TargetID, err)
		}
		if found {
			previous = statusName(up)
		}
	}

	if previous == res.Status() {
		s.log.DebugObj("target status unchanged", "probe_result", res)
		return nil
	}

	s.log.InfoObj("target status changed", "probe_transition", map[string]any{
		"target_id": res.TargetID,
		"url":       res.URL,
		"from":      previous,
		"to":        res.Status(),
	})

	var publishErr error
	if s.publisher != nil {
		delivered, err := s.publisher.Publish(ctx, publishers.NewEvent(res, previous))
		if err != nil {
			s.log.ErrorObj("transition publish failed", "publish_error", map[string]any{
				"target_id": res.TargetID,
				"delivered": delivered,
				"error":     err.Error(),
			})
			publishErr = fmt.Errorf("publish transition for target %s: %w", res.TargetID, err)
			if delivered == 0 {
				return publishErr
			}
		}
	}

	if s.store != nil {
		if err := s.store.SetStatus(res.TargetID, res.Reachable); err != nil {
			return errors.Join(publishErr, fmt.Errorf("store status for target %s: %w", res.TargetID, err))
		}
	}
	return publishErr
}

func statusName(up bool) string {
	return domain.ProbeResult{Reachable: up}.Status()
}
