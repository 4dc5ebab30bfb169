package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/querycore/querykey"
)

// QueryMeta describes a query for telemetry purposes.
//
// The identifier itself is never emitted: keys routinely carry user data, so
// logs, spans and metrics only see its digest.
type QueryMeta struct {
	Name string // Query name, conventionally the first key element (may be empty)
	Hash string // Canonical identifier of the key
}

// Digest returns the short fingerprint of the identifier.
func (m QueryMeta) Digest() string {
	return querykey.Digest(m.Hash)
}

// SpanName returns the deterministic span name for this query.
// Format: query.fetch.<name> or query.fetch
func (m QueryMeta) SpanName() string {
	if m.Name != "" {
		return "query.fetch." + m.Name
	}
	return "query.fetch"
}

// attributes returns the attributes shared by spans and metrics.
func (m QueryMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("query.digest", m.Digest()),
	}
	if m.Name != "" {
		attrs = append(attrs, attribute.String("query.name", m.Name))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with query-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a producer invocation.
	StartSpan(ctx context.Context, meta QueryMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with query metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta QueryMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("query.error", false))

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("query.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta QueryMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
