package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("bigb-analyzer/internal/interfaces/httpapi")

// startHandlerSpan opens a child of the otelhttp server span. Requests that
// were not traced (health probes) get the non-recording span from the request.
func startHandlerSpan(r *http.Request, handler string) (context.Context, trace.Span) {
	ctx := r.Context()
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	return apiTracer.Start(ctx, handlerSpanName(handler),
		trace.WithAttributes(attribute.String("http.route", r.Pattern)),
	)
}

func handlerSpanName(handler string) string {
	return "httpapi.Handler." + handler
}
