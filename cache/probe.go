package cache

import (
	"context"
	"os"
	"sync"

	"github.com/jonwraymond/docscache/observe"
)

// Probe decides once whether the cache root is usable.
// The answer never changes afterwards, even if the directory appears later.
type Probe struct {
	root    string
	logger  observe.Logger
	once    sync.Once
	enabled bool
}

// NewProbe creates a probe for root.
func NewProbe(root string, logger observe.Logger) *Probe {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Probe{root: root, logger: logger}
}

// Enabled reports whether root existed as a directory on first call.
func (p *Probe) Enabled(ctx context.Context) bool {
	p.once.Do(func() {
		info, err := os.Stat(p.root)
		p.enabled = err == nil && info.IsDir()
		if !p.enabled {
			p.logger.Info(ctx, "cache directory not mounted; caching disabled",
				observe.Field{Key: "cache.dir", Value: p.root})
		}
	})
	return p.enabled
}
