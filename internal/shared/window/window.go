// Package window provides sliding-window hit counters keyed by arbitrary
// strings. The memory store serves a single instance; the redis store shares
// windows between instances.
package window

import (
	"context"
	"time"
)

// Store counts hits inside a trailing window.
type Store interface {
	// Hit records a hit at `at`, prunes every hit at or before at-span and
	// returns the number of hits left in the window, the new one included.
	Hit(ctx context.Context, key string, at time.Time, span time.Duration) (int, error)
	// Sweep evicts keys whose last hit is older than idle and returns how many
	// were dropped.
	Sweep(ctx context.Context, now time.Time, idle time.Duration) int
}
