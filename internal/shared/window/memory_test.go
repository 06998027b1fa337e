package window

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreHit(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Unix(1_700_000_000, 0)

	for i := 1; i <= 5; i++ {
		n, err := s.Hit(ctx, "a", base.Add(time.Duration(i)*time.Second), time.Minute)
		require.NoError(t, err)
		assert.Equal(i, n)
	}

	// first five hits fall out of the window
	n, _ := s.Hit(ctx, "a", base.Add(66*time.Second), time.Minute)
	assert.Equal(1, n)

	n, _ = s.Hit(ctx, "b", base, time.Minute)
	assert.Equal(1, n, "keys are independent")
}

func TestMemoryStoreHitExactBoundaryIsPruned(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Unix(1_700_000_000, 0)

	_, _ = s.Hit(ctx, "a", base, time.Minute)
	n, _ := s.Hit(ctx, "a", base.Add(time.Minute), time.Minute)
	assert.Equal(t, 1, n)
}

func TestMemoryStoreConcurrentHits(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Hit(ctx, "k", now, time.Hour)
		}()
	}
	wg.Wait()

	n, _ := s.Hit(ctx, "k", now, time.Hour)
	assert.Equal(t, 51, n)
}

func TestMemoryStoreSweep(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Unix(1_700_000_000, 0)

	_, _ = s.Hit(ctx, "old", base, time.Minute)
	_, _ = s.Hit(ctx, "fresh", base.Add(10*time.Minute), time.Minute)

	dropped := s.Sweep(ctx, base.Add(11*time.Minute), 5*time.Minute)
	assert.Equal(1, dropped)
	assert.Equal(1, s.Len())
}
