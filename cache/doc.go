// Package cache memoizes documentation-lookup tool results on disk.
//
// Entries live as flat files named <tool>_<hash>.json under a cache root.
// The hash is a 64-bit xxHash of the tool name and a canonical JSON encoding
// of the call arguments. Freshness comes from the file's modification time
// compared against a TTL, so entries carry no timestamps of their own.
//
// Caching is strictly best-effort. A missing cache root disables the cache
// for the lifetime of the DiskCache; unreadable, corrupt or stale entries
// read as misses; write failures are logged and never reach the caller.
// Clear is the only operation that reports failure, through the tool result
// it returns.
//
// Multiple processes may share one cache root. Writes replace whole files
// via rename, so readers never see a partial entry. There is no
// cross-process locking: concurrent puts for one key are last-write-wins,
// and a clear racing a put may drop the fresh entry. Both cases only cost a
// later miss.
package cache
