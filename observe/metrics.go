package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome classifies a single cache lookup.
type Outcome string

const (
	OutcomeHit      Outcome = "hit"
	OutcomeMiss     Outcome = "miss"
	OutcomeStale    Outcome = "stale"
	OutcomeCorrupt  Outcome = "corrupt"
	OutcomeDisabled Outcome = "disabled"
)

// Metrics records cache and tool-call metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup counts one cache lookup for tool with its outcome.
	RecordLookup(ctx context.Context, tool string, outcome Outcome)

	// RecordWrite counts one cache write; err is nil on success.
	RecordWrite(ctx context.Context, tool string, err error)

	// RecordClear records the result of one bulk clear.
	RecordClear(ctx context.Context, removed, failed int)

	// RecordExecution records a cached tool call end to end.
	RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, cacheHit bool, err error)
}

type otelMetrics struct {
	lookups      metric.Int64Counter
	writes       metric.Int64Counter
	cleared      metric.Int64Counter
	clearFailed  metric.Int64Counter
	execErrors   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates Metrics backed by the given OpenTelemetry meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	lookups, err := meter.Int64Counter(
		"cache.lookups",
		metric.WithDescription("Cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	writes, err := meter.Int64Counter(
		"cache.writes",
		metric.WithDescription("Cache entry writes by status"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, err
	}

	cleared, err := meter.Int64Counter(
		"cache.clear.removed",
		metric.WithDescription("Cache entries removed by clear"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	clearFailed, err := meter.Int64Counter(
		"cache.clear.failed",
		metric.WithDescription("Cache entries that clear failed to remove"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	execErrors, err := meter.Int64Counter(
		"tool.exec.errors",
		metric.WithDescription("Tool calls that returned an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"tool.exec.duration_ms",
		metric.WithDescription("Tool call duration in milliseconds, cache lookups included"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		lookups:      lookups,
		writes:       writes,
		cleared:      cleared,
		clearFailed:  clearFailed,
		execErrors:   execErrors,
		durationHist: durationHist,
	}, nil
}

func (m *otelMetrics) RecordLookup(ctx context.Context, tool string, outcome Outcome) {
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool.name", tool),
		attribute.String("cache.outcome", string(outcome)),
	))
}

func (m *otelMetrics) RecordWrite(ctx context.Context, tool string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.writes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool.name", tool),
		attribute.String("cache.status", status),
	))
}

func (m *otelMetrics) RecordClear(ctx context.Context, removed, failed int) {
	m.cleared.Add(ctx, int64(removed))
	m.clearFailed.Add(ctx, int64(failed))
}

func (m *otelMetrics) RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, cacheHit bool, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("tool.name", meta.Name),
		attribute.Bool("cache.hit", cacheHit),
	}
	if meta.Namespace != "" {
		attrs = append(attrs, attribute.String("tool.namespace", meta.Namespace))
	}
	opt := metric.WithAttributes(attrs...)

	if err != nil {
		m.execErrors.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

// NopMetrics returns Metrics that record nothing.
func NopMetrics() Metrics { return nopMetrics{} }

type nopMetrics struct{}

func (nopMetrics) RecordLookup(context.Context, string, Outcome)                        {}
func (nopMetrics) RecordWrite(context.Context, string, error)                           {}
func (nopMetrics) RecordClear(context.Context, int, int)                                {}
func (nopMetrics) RecordExecution(context.Context, ToolMeta, time.Duration, bool, error) {}
