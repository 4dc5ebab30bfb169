package observe

import (
	"context"
	"time"
)

// ExecuteFunc is the signature of an instrumented producer invocation.
type ExecuteFunc func(ctx context.Context, meta QueryMeta) (any, error)

// Middleware wraps producer invocations with observability (tracing, metrics, logging)
// and records the fetches that never reach a producer.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped function are recorded and propagated unchanged.
//   - Ownership: Results are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
// Nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NopMiddleware returns a Middleware that records nothing.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// Wrap wraps an ExecuteFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, meta QueryMeta) (any, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		result, err := fn(ctx, meta)
		duration := time.Since(start)

		m.tracer.EndSpan(span, err)
		m.metrics.RecordFetch(ctx, meta, duration, err)

		queryLogger := m.logger.WithQuery(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			queryLogger.Error(ctx, "query fetch failed", fields...)
		} else {
			queryLogger.Info(ctx, "query fetch completed", fields...)
		}

		return result, err
	}
}

// CacheHit records a fetch answered from fresh cached data.
func (m *Middleware) CacheHit(ctx context.Context, meta QueryMeta) {
	m.metrics.RecordCacheHit(ctx, meta)
	m.logger.WithQuery(meta).Debug(ctx, "query cache hit")
}

// Coalesced records a caller that received another caller's fetch result.
func (m *Middleware) Coalesced(ctx context.Context, meta QueryMeta) {
	m.metrics.RecordCoalesced(ctx, meta)
	m.logger.WithQuery(meta).Debug(ctx, "query fetch coalesced")
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
