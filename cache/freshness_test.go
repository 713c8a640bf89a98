package cache

import (
	"testing"
	"time"
)

func TestIsFresh(t *testing.T) {
	written := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := time.Hour

	tests := []struct {
		name string
		now  time.Time
		ttl  time.Duration
		want bool
	}{
		{"just written", written, ttl, true},
		{"inside ttl", written.Add(59 * time.Minute), ttl, true},
		{"one tick before ttl", written.Add(ttl - time.Nanosecond), ttl, true},
		{"exactly ttl", written.Add(ttl), ttl, false},
		{"past ttl", written.Add(2 * ttl), ttl, false},
		{"zero ttl", written, 0, false},
		{"clock skew", written.Add(-time.Second), ttl, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFresh(written, tt.now, tt.ttl); got != tt.want {
				t.Errorf("IsFresh(age=%v, ttl=%v) = %v, want %v", tt.now.Sub(written), tt.ttl, got, tt.want)
			}
		})
	}
}
