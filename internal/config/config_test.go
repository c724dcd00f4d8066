package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPTimeout != 10*time.Second || cfg.HTTPResourceTimeout != 10*time.Second {
		t.Fatalf("unexpected http timeouts %s / %s", cfg.HTTPTimeout, cfg.HTTPResourceTimeout)
	}
	if cfg.ProbeInterval != time.Minute || cfg.ProbeConcurrency != 4 {
		t.Fatalf("unexpected probe settings %s / %d", cfg.ProbeInterval, cfg.ProbeConcurrency)
	}
	if cfg.TrustedSSLDomain != "" {
		t.Fatalf("expected no trusted domain by default, got %q", cfg.TrustedSSLDomain)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("TRUSTED_SSL_DOMAIN", "  dev.internal ")
	t.Setenv("PROBE_CONCURRENCY", "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.TrustedSSLDomain != "dev.internal" {
		t.Fatalf("expected trimmed trusted domain, got %q", cfg.TrustedSSLDomain)
	}
	if cfg.ProbeConcurrency != 9 {
		t.Fatalf("expected concurrency 9, got %d", cfg.ProbeConcurrency)
	}
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	for _, key := range []string{
		"HTTP_TIMEOUT_SECONDS",
		"HTTP_RESOURCE_TIMEOUT_SECONDS",
		"PROBE_INTERVAL",
		"PROBE_CONCURRENCY",
		"STORAGE_TTL_SECONDS",
		"STORAGE_CLEANUP_INTERVAL_SECONDS",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "0")
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=0", key)
			}
		})
	}
}
