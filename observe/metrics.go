package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricFetchTotal     = "query.fetch.total"
	MetricFetchErrors    = "query.fetch.errors"
	MetricFetchDuration  = "query.fetch.duration_ms"
	MetricCacheHits      = "query.cache.hits"
	MetricFetchCoalesced = "query.fetch.coalesced"
)

// Metrics records fetch metrics for queries.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordFetch records one producer invocation with its duration and error status.
	RecordFetch(ctx context.Context, meta QueryMeta, duration time.Duration, err error)

	// RecordCacheHit records a fetch answered from fresh cached data.
	RecordCacheHit(ctx context.Context, meta QueryMeta)

	// RecordCoalesced records a caller that shared another caller's fetch.
	RecordCoalesced(ctx context.Context, meta QueryMeta)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	totalCount     metric.Int64Counter
	errorCount     metric.Int64Counter
	durationHist   metric.Float64Histogram
	hitCount       metric.Int64Counter
	coalescedCount metric.Int64Counter
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		MetricFetchTotal,
		metric.WithDescription("Total number of producer invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		MetricFetchErrors,
		metric.WithDescription("Total number of failed producer invocations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricFetchDuration,
		metric.WithDescription("Producer invocation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	hitCount, err := meter.Int64Counter(
		MetricCacheHits,
		metric.WithDescription("Fetches answered from fresh cached data"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	coalescedCount, err := meter.Int64Counter(
		MetricFetchCoalesced,
		metric.WithDescription("Fetches that joined an in-flight producer invocation"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:     totalCount,
		errorCount:     errorCount,
		durationHist:   durationHist,
		hitCount:       hitCount,
		coalescedCount: coalescedCount,
	}, nil
}

// RecordFetch records metrics for a producer invocation.
func (m *metricsImpl) RecordFetch(ctx context.Context, meta QueryMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordCacheHit increments the cache hit counter.
func (m *metricsImpl) RecordCacheHit(ctx context.Context, meta QueryMeta) {
	m.hitCount.Add(ctx, 1, metric.WithAttributes(meta.attributes()...))
}

// RecordCoalesced increments the coalesced fetch counter.
func (m *metricsImpl) RecordCoalesced(ctx context.Context, meta QueryMeta) {
	m.coalescedCount.Add(ctx, 1, metric.WithAttributes(meta.attributes()...))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordFetch(ctx context.Context, meta QueryMeta, duration time.Duration, err error) {
}
func (m *noopMetrics) RecordCacheHit(ctx context.Context, meta QueryMeta)  {}
func (m *noopMetrics) RecordCoalesced(ctx context.Context, meta QueryMeta) {}
