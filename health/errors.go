package health

import "errors"

var (
	// ErrCheckTimeout indicates a health check did not finish before the deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under the name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrCacheRootMissing indicates the cache directory does not exist or is not a directory.
	ErrCacheRootMissing = errors.New("health: cache directory not mounted")

	// ErrCacheRootNotWritable indicates entries cannot be created in the cache directory.
	ErrCacheRootNotWritable = errors.New("health: cache directory not writable")
)
