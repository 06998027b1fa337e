package window

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type series struct {
	hits []time.Time
	last time.Time
}

// MemoryStore keeps windows in a sharded in-process map. Updates of one key
// are serialized by the map's per-bucket locking.
type MemoryStore struct {
	series *xsync.MapOf[string, *series]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{series: xsync.NewMapOf[string, *series]()}
}

func (m *MemoryStore) Hit(_ context.Context, key string, at time.Time, span time.Duration) (int, error) {
	cutoff := at.Add(-span)
	var count int
	m.series.Compute(key, func(old *series, loaded bool) (*series, bool) {
		s := &series{}
		if loaded {
			for _, t := range old.hits {
				if t.After(cutoff) {
					s.hits = append(s.hits, t)
				}
			}
			s.last = old.last
		}
		s.hits = append(s.hits, at)
		if at.After(s.last) {
			s.last = at
		}
		count = len(s.hits)
		return s, false
	})
	return count, nil
}

func (m *MemoryStore) Sweep(_ context.Context, now time.Time, idle time.Duration) int {
	dropped := 0
	m.series.Range(func(key string, _ *series) bool {
		m.series.Compute(key, func(old *series, loaded bool) (*series, bool) {
			drop := !loaded || now.Sub(old.last) > idle
			if drop && loaded {
				dropped++
			}
			return old, drop
		})
		return true
	})
	return dropped
}

// Len returns the number of tracked keys.
func (m *MemoryStore) Len() int {
	return m.series.Size()
}
