package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics are the counters for the aggregation pipeline: cache
// behavior of the weather service and per-source alert failures.
type PipelineMetrics struct {
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	sourceFailures metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments on the given meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	cacheHits, err := meter.Int64Counter("weather_cache_hits_total",
		metric.WithDescription("Aggregate fetches served from cache"))
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter("weather_cache_misses_total",
		metric.WithDescription("Aggregate fetches that required upstream calls"))
	if err != nil {
		return nil, err
	}

	sourceFailures, err := meter.Int64Counter("alert_source_failures_total",
		metric.WithDescription("Alert source fetches that degraded to empty"))
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		cacheHits:      cacheHits,
		cacheMisses:    cacheMisses,
		sourceFailures: sourceFailures,
	}, nil
}

// CacheHit records one cache-served fetch.
func (m *PipelineMetrics) CacheHit() {
	m.cacheHits.Add(context.Background(), 1)
}

// CacheMiss records one fetch that went upstream.
func (m *PipelineMetrics) CacheMiss() {
	m.cacheMisses.Add(context.Background(), 1)
}

// AlertSourceFailure records one absorbed alert-source failure.
func (m *PipelineMetrics) AlertSourceFailure(source string) {
	m.sourceFailures.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("source", source)))
}
