package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jonwraymond/docscache/observe"
)

// DefaultRoot is where the plugin host mounts the cache directory.
const DefaultRoot = "/cache"

// DiskCache is the facade other code calls: Get before a lookup, Put after
// it, and Clear on an explicit administrative request.
//
// Contract:
// - Concurrency: safe for concurrent use; the availability probe runs once.
// - Errors: Get and Put never fail; every fault degrades to a miss or no-op.
type DiskCache struct {
	store   *DiskStore
	probe   *Probe
	keyer   Keyer
	policy  Policy
	logger  observe.Logger
	metrics observe.Metrics
	now     func() time.Time
}

// Option configures a DiskCache.
type Option func(*DiskCache)

// WithPolicy sets the TTL and error-caching policy.
func WithPolicy(p Policy) Option {
	return func(c *DiskCache) { c.policy = p }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l observe.Logger) Option {
	return func(c *DiskCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(c *DiskCache) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithKeyer replaces the key deriver.
func WithKeyer(k Keyer) Option {
	return func(c *DiskCache) {
		if k != nil {
			c.keyer = k
		}
	}
}

// WithClock replaces time.Now for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(c *DiskCache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a DiskCache rooted at root. Availability is probed lazily on
// first use and memoized.
func New(root string, opts ...Option) *DiskCache {
	c := &DiskCache{
		store:   NewDiskStore(root),
		keyer:   NewDefaultKeyer(),
		policy:  DefaultPolicy(),
		logger:  observe.NopLogger(),
		metrics: observe.NopMetrics(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.probe = NewProbe(root, c.logger)
	return c
}

// Root returns the cache directory.
func (c *DiskCache) Root() string { return c.store.Root() }

// Policy returns the resolved caching policy.
func (c *DiskCache) Policy() Policy { return c.policy }

// Path returns the entry file a call with (tool, args) reads and writes.
func (c *DiskCache) Path(tool string, args any) (string, error) {
	key, err := c.keyer.Key(tool, args)
	if err != nil {
		return "", err
	}
	return key.Path(c.store.Root()), nil
}

// Enabled reports whether the cache root was usable on first check.
func (c *DiskCache) Enabled(ctx context.Context) bool {
	return c.probe.Enabled(ctx)
}

// Get returns the stored result for (tool, args) if a fresh, readable entry
// exists.
func (c *DiskCache) Get(ctx context.Context, tool string, args any) (*mcp.CallToolResult, bool) {
	if !c.Enabled(ctx) {
		c.metrics.RecordLookup(ctx, tool, observe.OutcomeDisabled)
		return nil, false
	}

	key, err := c.keyer.Key(tool, args)
	if err != nil {
		c.logger.Debug(ctx, "cache key derivation failed",
			observe.Field{Key: "tool", Value: tool},
			observe.Field{Key: "error", Value: err.Error()})
		c.metrics.RecordLookup(ctx, tool, observe.OutcomeMiss)
		return nil, false
	}
	path := key.Path(c.store.Root())

	modTime, ok := c.store.ModTime(path)
	if !ok {
		c.metrics.RecordLookup(ctx, tool, observe.OutcomeMiss)
		return nil, false
	}
	if !IsFresh(modTime, c.now(), c.policy.TTL) {
		c.metrics.RecordLookup(ctx, tool, observe.OutcomeStale)
		return nil, false
	}

	data, ok := c.store.Read(path)
	if !ok {
		c.metrics.RecordLookup(ctx, tool, observe.OutcomeCorrupt)
		return nil, false
	}
	result, err := DecodeResult(data)
	if err != nil {
		c.logger.Debug(ctx, "ignoring unreadable cache entry",
			observe.Field{Key: "path", Value: path},
			observe.Field{Key: "error", Value: err.Error()})
		c.metrics.RecordLookup(ctx, tool, observe.OutcomeCorrupt)
		return nil, false
	}

	c.metrics.RecordLookup(ctx, tool, observe.OutcomeHit)
	return result, true
}

// Put stores result under (tool, args), replacing any previous entry.
// Failures are logged as warnings and otherwise ignored.
func (c *DiskCache) Put(ctx context.Context, tool string, args any, result *mcp.CallToolResult) {
	if !c.Enabled(ctx) {
		return
	}

	key, err := c.keyer.Key(tool, args)
	if err != nil {
		c.logger.Warn(ctx, "failed to derive cache key",
			observe.Field{Key: "tool", Value: tool},
			observe.Field{Key: "error", Value: err.Error()})
		c.metrics.RecordWrite(ctx, tool, err)
		return
	}

	data, err := EncodeResult(result)
	if err != nil {
		c.logger.Warn(ctx, "failed to serialize cache entry",
			observe.Field{Key: "tool", Value: tool},
			observe.Field{Key: "error", Value: err.Error()})
		c.metrics.RecordWrite(ctx, tool, err)
		return
	}

	path := key.Path(c.store.Root())
	if err := c.store.Write(path, data); err != nil {
		c.logger.Warn(ctx, "failed to write cache file",
			observe.Field{Key: "path", Value: path},
			observe.Field{Key: "error", Value: err.Error()})
		c.metrics.RecordWrite(ctx, tool, err)
		return
	}

	c.metrics.RecordWrite(ctx, tool, nil)
}

// Clear removes every entry and reports the outcome as a tool result.
// A disabled cache is not an error; partial failures are, and the message
// lists every path that could not be removed.
func (c *DiskCache) Clear(ctx context.Context) *mcp.CallToolResult {
	if !c.Enabled(ctx) {
		return mcp.NewToolResultText("Cache is not enabled (directory not mounted)")
	}

	removed, failures, err := c.store.RemoveAll()
	if err != nil {
		c.logger.Error(ctx, "failed to read cache directory",
			observe.Field{Key: "cache.dir", Value: c.store.Root()},
			observe.Field{Key: "error", Value: err.Error()})
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read cache directory: %v", err))
	}
	c.metrics.RecordClear(ctx, removed, len(failures))

	if len(failures) > 0 {
		c.logger.Warn(ctx, "cache clear incomplete",
			observe.Field{Key: "removed", Value: removed},
			observe.Field{Key: "failed", Value: len(failures)})
		return mcp.NewToolResultError(fmt.Sprintf("Failed to remove %d cache entries: %s",
			len(failures), strings.Join(failures, "; ")))
	}

	c.logger.Info(ctx, "cache cleared", observe.Field{Key: "removed", Value: removed})
	return mcp.NewToolResultText(fmt.Sprintf("Cache cleared successfully (%d entries removed)", removed))
}

// Entries lists the stored entries with their freshness under the current
// policy. It returns ErrCacheDisabled when the root is not mounted.
func (c *DiskCache) Entries(ctx context.Context) ([]EntryInfo, error) {
	if !c.Enabled(ctx) {
		return nil, ErrCacheDisabled
	}

	entries, err := c.store.List()
	if err != nil {
		return nil, fmt.Errorf("cache: list %s: %w", c.store.Root(), err)
	}

	now := c.now()
	for i := range entries {
		entries[i].Fresh = IsFresh(entries[i].ModTime, now, c.policy.TTL)
	}
	return entries, nil
}
