package observe

import (
	"context"
	"time"
)

// CallFunc performs one tool call and reports whether the cache answered it.
type CallFunc func(ctx context.Context) (cacheHit bool, err error)

// Middleware wraps tool calls with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Run is safe for concurrent use.
//   - Errors: errors from the wrapped call are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components fall back to no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// MiddlewareFromObserver builds a Middleware and its Metrics from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, Metrics, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), metrics, nil
}

// Run executes fn inside a span and records its duration and outcome.
func (m *Middleware) Run(ctx context.Context, tool ToolMeta, fn CallFunc) error {
	ctx, span := m.tracer.StartSpan(ctx, tool)
	start := time.Now()

	hit, err := fn(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, hit, err)
	m.metrics.RecordExecution(ctx, tool, duration, hit, err)

	fields := []Field{
		{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		{Key: "cache.hit", Value: hit},
	}
	logger := m.logger.WithTool(tool)
	if err != nil {
		logger.Error(ctx, "tool call failed", append(fields, Field{Key: "error", Value: err.Error()})...)
	} else {
		logger.Debug(ctx, "tool call completed", fields...)
	}
	return err
}
