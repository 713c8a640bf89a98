package cache

import (
	"errors"
	"fmt"
)

// MaxToolNameLength is the maximum allowed length for a tool name.
const MaxToolNameLength = 128

// EntryExt is the filename extension of every cache entry.
const EntryExt = ".json"

// Sentinel errors for cache operations.
var (
	ErrInvalidToolName = errors.New("cache: tool name is invalid")
	ErrToolNameTooLong = errors.New("cache: tool name exceeds max length")
	ErrNilResult       = errors.New("cache: result is nil")
	ErrMalformedEntry  = errors.New("cache: entry is not a tool result")
	ErrCacheDisabled   = errors.New("cache: cache directory not mounted")
)

// ValidateToolName checks that a tool name can prefix an entry filename.
// Allowed characters are ASCII letters, digits, '_', '-' and '.'.
func ValidateToolName(tool string) error {
	if tool == "" || tool == "." || tool == ".." {
		return ErrInvalidToolName
	}
	if len(tool) > MaxToolNameLength {
		return ErrToolNameTooLong
	}
	for i := 0; i < len(tool); i++ {
		c := tool[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == '-', c == '.':
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidToolName, tool, c)
		}
	}
	return nil
}
