package health

import (
	"context"
	"os"
)

// CacheRoot is the view of a disk cache the checker needs.
type CacheRoot interface {
	Root() string
	Enabled(ctx context.Context) bool
}

// CacheRootChecker reports whether the cache directory is usable.
//
//   - Healthy: the directory exists, is writable and caching is on.
//   - Degraded: the directory exists but cannot be written, or it appeared
//     after the process decided caching was off.
//   - Unhealthy: the directory is missing; every lookup goes upstream.
type CacheRootChecker struct {
	cache CacheRoot
}

// NewCacheRootChecker creates a checker for c.
func NewCacheRootChecker(c CacheRoot) *CacheRootChecker {
	return &CacheRootChecker{cache: c}
}

func (c *CacheRootChecker) Name() string { return "cache" }

func (c *CacheRootChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	root := c.cache.Root()
	details := map[string]any{"path": root}
	enabled := c.cache.Enabled(ctx)
	details["enabled"] = enabled

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return Unhealthy("cache directory not mounted; caching disabled", ErrCacheRootMissing).
			WithDetails(details)
	}
	if !enabled {
		return Degraded("cache directory mounted after startup; caching stays disabled until restart", nil).
			WithDetails(details)
	}

	f, err := os.CreateTemp(root, ".health-*")
	if err != nil {
		details["error"] = err.Error()
		return Degraded("cache directory not writable; entries will not be stored", ErrCacheRootNotWritable).
			WithDetails(details)
	}
	_ = f.Close()
	_ = os.Remove(f.Name())

	return Healthy("cache directory writable").WithDetails(details)
}
