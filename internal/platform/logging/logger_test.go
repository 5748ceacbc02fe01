package logging

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_FieldsAndErrors(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).Named("sync").With("run_id", "r-1")

	logger.Warn("row failed", "external_id", "4046", "error", errors.New("boom"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "sync" {
		t.Fatalf("unexpected logger name: %q", entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["run_id"] != "r-1" || fields["external_id"] != "4046" {
		t.Fatalf("unexpected fields: %#v", fields)
	}
	if fields["error"] != "boom" {
		t.Fatalf("expected error field, got %#v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept")
	}
}

func TestLogger_ContextAddsTraceIDs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "fetched")
	logger.DebugContext(ctx, "dropped below level")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != traceID.String() || fields["span_id"] != spanID.String() {
		t.Fatalf("missing trace fields: %#v", fields)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if logger.Named("x") == nil || logger.With("k", "v") == nil {
		t.Fatalf("expected nop logger for nil receiver")
	}
}

func TestLogger_RedactsSecrets(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core)).With("redis_url", "redis://:secret@cache:6379/0")

	logger.Info("sheets client ready", "api_key", "AIza-secret", "spreadsheet_id", "sheet-1")

	fields := logs.All()[0].ContextMap()
	if fields["api_key"] != redacted || fields["redis_url"] != redacted {
		t.Fatalf("secrets not redacted: %#v", fields)
	}
	if fields["spreadsheet_id"] != "sheet-1" {
		t.Fatalf("ordinary field altered: %#v", fields)
	}
}

func TestLogger_SyncOnce(t *testing.T) {
	t.Parallel()

	logger := NewNop()
	if err := logger.Sync(); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if err := logger.Sync(); err != nil {
		t.Fatalf("second sync: %v", err)
	}
}
