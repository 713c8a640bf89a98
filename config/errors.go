package config

import "errors"

var (
	// ErrMissingCacheDir indicates CacheDir is empty.
	ErrMissingCacheDir = errors.New("config: cache directory is required")

	// ErrInvalidCacheErrors indicates CACHE_ERRORS is not a boolean.
	ErrInvalidCacheErrors = errors.New("config: CACHE_ERRORS must be a boolean")

	// ErrInvalidListenAddr indicates ListenAddr is empty.
	ErrInvalidListenAddr = errors.New("config: listen address is required")
)

// ErrMissingEnv indicates the YAML file references an unset ${VAR}.
var ErrMissingEnv = errors.New("config: missing environment variables")
