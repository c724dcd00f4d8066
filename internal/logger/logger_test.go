package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}
}

func TestZapLoggerWritesObjectField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := New(zap.New(core))

	log.InfoObj("target probed", "probe", map[string]any{"id": "api"})
	log.ErrorObj("publish failed", "error", "boom")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "target probed" || entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if _, ok := entries[0].ContextMap()["probe"]; !ok {
		t.Fatalf("expected probe field, got %v", entries[0].ContextMap())
	}
	if entries[1].ContextMap()["error"] != "boom" {
		t.Fatalf("unexpected error field %v", entries[1].ContextMap())
	}
}

func TestNewWithNilIsNoop(t *testing.T) {
	log := New(nil)
	if _, ok := log.(*NopLogger); !ok {
		t.Fatalf("expected NopLogger, got %T", log)
	}
	log.InfoObj("ignored", "k", 1)
}
