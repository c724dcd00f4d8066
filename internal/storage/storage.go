package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store remembers the last observed reachability of each target.
type Store interface {
	Close() error
	// LastStatus returns the stored state for id; found is false when nothing
	// was recorded or the entry expired.
	LastStatus(id string) (up bool, found bool, err error)
	SetStatus(id string, up bool) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	StatusTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultStatusTTL       = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.StatusTTL <= 0 {
		opts.StatusTTL = defaultStatusTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                          { return nil }
func (noopStore) LastStatus(string) (bool, bool, error) { return false, false, nil }
func (noopStore) SetStatus(string, bool) error          { return nil }
