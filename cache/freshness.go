package cache

import "time"

// IsFresh reports whether an entry last written at modTime is still valid at
// now. A modification time in the future (clock skew) counts as stale.
func IsFresh(modTime, now time.Time, ttl time.Duration) bool {
	age := now.Sub(modTime)
	return age >= 0 && age < ttl
}
