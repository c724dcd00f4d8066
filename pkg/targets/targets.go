package targets

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samvad-hq/samvad-httpclient/internal/fileconf"
)

// Target is one endpoint whose reachability is probed.
type Target struct {
	ID      string            `json:"id" yaml:"id"`
	Name    string            `json:"name" yaml:"name"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Enabled *bool             `json:"enabled" yaml:"enabled"`
}

// IsEnabled reports whether the target should be probed. Targets are enabled unless set to false.
func (t Target) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// Registry holds the loaded targets in file order. It is read-only after construction.
type Registry struct {
	targets []Target
}

// LoadRegistry reads a YAML or JSON targets file.
func LoadRegistry(path string) (*Registry, error) {
	var file struct {
		Targets []Target `json:"targets" yaml:"targets"`
	}
	if err := fileconf.Load(path, "targets", &file); err != nil {
		return nil, err
	}
	return NewRegistry(file.Targets)
}

// NewRegistry validates list and builds a registry from it.
func NewRegistry(list []Target) (*Registry, error) {
	if len(list) == 0 {
		return nil, errors.New("targets file contains no targets entries")
	}

	out := make([]Target, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for i, raw := range list {
		t, err := raw.normalize()
		if err != nil {
			return nil, fmt.Errorf("target[%d]: %w", i, err)
		}
		if _, exists := seen[t.ID]; exists {
			return nil, fmt.Errorf("duplicate target id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return &Registry{targets: out}, nil
}

// All returns a copy of every target.
func (r *Registry) All() []Target {
	if r == nil {
		return nil
	}
	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Enabled returns the targets that should be probed.
func (r *Registry) Enabled() []Target {
	all := r.All()
	out := make([]Target, 0, len(all))
	for _, t := range all {
		if t.IsEnabled() {
			out = append(out, t)
		}
	}
	return out
}

// normalize trims every field, defaults the name to the id and requires an
// absolute http(s) url.
func (t Target) normalize() (Target, error) {
	t.ID = strings.TrimSpace(t.ID)
	t.Name = strings.TrimSpace(t.Name)
	t.URL = strings.TrimSpace(t.URL)
	t.Headers = fileconf.Headers(t.Headers)
	if t.Name == "" {
		t.Name = t.ID
	}

	if t.ID == "" {
		return t, errors.New("id is required")
	}
	if t.URL == "" {
		return t, fmt.Errorf("url is required for target %q", t.ID)
	}
	u, err := url.Parse(t.URL)
	if err != nil {
		return t, fmt.Errorf("invalid url for target %q: %w", t.ID, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return t, fmt.Errorf("url for target %q must be an absolute http(s) url", t.ID)
	}
	return t, nil
}
