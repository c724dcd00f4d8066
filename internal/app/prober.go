package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-httpclient/internal/config"
	"github.com/samvad-hq/samvad-httpclient/internal/logger"
	"github.com/samvad-hq/samvad-httpclient/internal/prober"
	"github.com/samvad-hq/samvad-httpclient/internal/storage"
	"github.com/samvad-hq/samvad-httpclient/pkg/httpclient"
	"github.com/samvad-hq/samvad-httpclient/pkg/publishers"
	"github.com/samvad-hq/samvad-httpclient/pkg/targets"
)

// Prober is the long-running reachability watcher. It owns the probe loop,
// the status store and the publisher fanout.
type Prober struct {
	cfg           *config.Config
	targetReg     *targets.Registry
	fanout        *publishers.Fanout
	service       *prober.Service
	probeInterval time.Duration
	log           logger.Logger
	store         storage.Store
}

// NewClient builds the HTTP client described by cfg.
func NewClient(cfg *config.Config, log logger.Logger) *httpclient.Client {
	return httpclient.New(
		httpclient.WithTimeout(cfg.HTTPTimeout),
		httpclient.WithResourceTimeout(cfg.HTTPResourceTimeout),
		httpclient.WithTrustedSSLDomain(cfg.TrustedSSLDomain),
		httpclient.WithLogger(log),
	)
}

// NewProber builds a prober runtime from config files.
func NewProber(ctx context.Context, cfg *config.Config, log logger.Logger) (*Prober, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	targetReg, err := targets.LoadRegistry(cfg.TargetsFile)
	if err != nil {
		return nil, fmt.Errorf("load targets registry: %w", err)
	}
	ids := make([]string, 0)
	for _, t := range targetReg.Enabled() {
		ids = append(ids, t.ID)
	}
	log.InfoObj("targets registry loaded", "targets_meta", map[string]any{
		"count": len(ids),
		"ids":   ids,
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		StatusTTL:       cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"status_ttl_seconds":       int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	service := prober.NewService(NewClient(cfg, log), fanout, store, log, cfg.ProbeConcurrency)

	return &Prober{
		cfg:           cfg,
		targetReg:     targetReg,
		fanout:        fanout,
		service:       service,
		probeInterval: cfg.ProbeInterval,
		log:           log,
		store:         store,
	}, nil
}

// buildFanout loads the publishers file. An empty path means transitions are only logged.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(cfg.PublishersFile) == "" {
		log.WarnObj("no publishers file configured; transitions are only logged", "publishers_file", cfg.PublishersFile)
		return publishers.NewFanout(nil), nil
	}

	enabled, err := publishers.Load(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	pubs, err := publishers.DefaultBuilders().Build(ctx, enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Run probes immediately and then on every interval until ctx is cancelled.
func (p *Prober) Run(ctx context.Context) error {
	if p == nil || p.service == nil {
		return fmt.Errorf("prober is not initialized")
	}
	defer p.close()

	list := p.targetReg.Enabled()
	if len(list) == 0 {
		p.log.WarnObj("no enabled targets; prober idle", "targets_file", p.cfg.TargetsFile)
		<-ctx.Done()
		return nil
	}

	p.log.InfoObj("probe loop starting", "prober_state", map[string]any{
		"targets_count":    len(list),
		"publishers_count": p.fanout.Size(),
		"probe_interval":   p.probeInterval.String(),
	})

	p.runOnce(ctx, list)

	ticker := time.NewTicker(p.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.InfoObj("probe loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			p.runOnce(ctx, list)
		}
	}
}

func (p *Prober) runOnce(ctx context.Context, list []targets.Target) {
	start := time.Now()
	results, err := p.service.Run(ctx, list)
	if err != nil {
		p.log.ErrorObj("probe round had failures", "error", err.Error())
	}

	reachable := 0
	for _, r := range results {
		if r.Reachable {
			reachable++
		}
	}
	p.log.InfoObj("probe round completed", "probe_meta", map[string]any{
		"targets_count": len(results),
		"reachable":     reachable,
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
}

func (p *Prober) close() {
	if p == nil {
		return
	}
	if err := p.fanout.Close(); err != nil {
		p.log.ErrorObj("publisher close failed", "error", err.Error())
	}
	if p.store == nil {
		return
	}
	if err := p.store.Close(); err != nil {
		p.log.ErrorObj("storage close failed", "error", err)
	}
}
