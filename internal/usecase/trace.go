package usecase

import (
	"context"

	"github.com/cockroachdb/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("bigb-analyzer/internal/usecase")

// startUsecaseSpan only starts a child span; calls without an active parent
// (scheduler ticks, CLI runs, tests) get the non-recording span from ctx.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if name == "" || !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// markSpan records err on span. Invalid input is a caller problem and leaves
// the span status unset.
func markSpan(span trace.Span, err error) {
	if err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	if !isClientError(err) {
		span.SetStatus(codes.Error, err.Error())
	}
}

func seasonWeekAttrs(season, week int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.Int("stats.season", season)}
	if week > 0 {
		attrs = append(attrs, attribute.Int("stats.week", week))
	}
	return attrs
}

func isClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized)
}
