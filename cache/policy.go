package cache

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Day is the unit of the TTL setting.
const Day = 24 * time.Hour

// DefaultTTL applies when the TTL setting is absent or unparseable.
const DefaultTTL = Day

// Policy configures caching behavior.
type Policy struct {
	// TTL is the maximum entry age. An entry is fresh while its age is
	// strictly less than TTL, so zero makes every entry stale.
	TTL time.Duration

	// CacheErrors stores results flagged isError. Transport errors returned
	// by the executor are never stored.
	CacheErrors bool
}

// DefaultPolicy returns a one-day TTL that does not cache error results.
func DefaultPolicy() Policy {
	return Policy{TTL: DefaultTTL}
}

// ParseTTL converts the TTL setting, a whole number of days with an optional
// leading '+', to a duration. Empty, padded, negative, non-numeric or
// overflowing values yield DefaultTTL.
func ParseTTL(raw string) time.Duration {
	days, err := strconv.ParseUint(strings.TrimPrefix(raw, "+"), 10, 64)
	if err != nil || days > uint64(math.MaxInt64/int64(Day)) {
		return DefaultTTL
	}
	return time.Duration(days) * Day
}

// ShouldStore reports whether a successful executor result may be cached.
func (p Policy) ShouldStore(result *mcp.CallToolResult) bool {
	if result == nil {
		return false
	}
	return !result.IsError || p.CacheErrors
}
