package cache

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/docscache/observe"
)

// ExecutorFunc performs the real (expensive) tool call.
// A returned error is a transport failure; application-level failures come
// back as a result with IsError set.
type ExecutorFunc func(ctx context.Context, tool string, args any) (*mcp.CallToolResult, error)

// Middleware wraps tool execution with the disk cache.
type Middleware struct {
	cache     *DiskCache
	observer  *observe.Middleware
	namespace string
	calls     singleflight.Group
}

// MiddlewareOption configures a Middleware.
type MiddlewareOption func(*Middleware)

// WithObserver records a span, metrics and a log line per call.
func WithObserver(obs *observe.Middleware) MiddlewareOption {
	return func(m *Middleware) {
		if obs != nil {
			m.observer = obs
		}
	}
}

// WithNamespace sets the tool namespace reported in telemetry.
func WithNamespace(ns string) MiddlewareOption {
	return func(m *Middleware) { m.namespace = ns }
}

// NewMiddleware creates a cache middleware around c.
func NewMiddleware(c *DiskCache, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		cache:    c,
		observer: observe.NewMiddleware(nil, nil, nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Execute returns the cached result for (tool, args) or runs executor and
// caches what it returns. Transport errors are never cached; error results
// are cached only when the policy allows it. A cache write never changes
// what the caller receives.
//
// Concurrent misses for the same key within this process share one executor
// call and receive the same result value. The shared call is not cancelled
// by any caller; a caller whose context ends returns its context error.
func (m *Middleware) Execute(ctx context.Context, tool string, args any, executor ExecutorFunc) (*mcp.CallToolResult, error) {
	var result *mcp.CallToolResult
	meta := observe.ToolMeta{Namespace: m.namespace, Name: tool}

	err := m.observer.Run(ctx, meta, func(ctx context.Context) (bool, error) {
		var (
			hit bool
			err error
		)
		result, hit, err = m.execute(ctx, tool, args, executor)
		return hit, err
	})
	return result, err
}

func (m *Middleware) execute(ctx context.Context, tool string, args any, executor ExecutorFunc) (*mcp.CallToolResult, bool, error) {
	if cached, ok := m.cache.Get(ctx, tool, args); ok {
		return cached, true, nil
	}

	key, err := m.cache.keyer.Key(tool, args)
	if err != nil {
		result, err := executor(ctx, tool, args)
		return result, false, err
	}

	// the shared call outlives any single caller; each caller still stops
	// waiting when its own context ends
	shared := context.WithoutCancel(ctx)
	ch := m.calls.DoChan(key.Filename(), func() (any, error) {
		result, err := executor(shared, tool, args)
		if err != nil {
			return result, err
		}
		if m.cache.policy.ShouldStore(result) {
			m.cache.Put(shared, tool, args, result)
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		result, _ := res.Val.(*mcp.CallToolResult)
		return result, false, res.Err
	}
}
