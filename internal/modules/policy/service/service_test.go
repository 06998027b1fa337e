package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	managed  bool
	failBans bool
	loads    atomic.Int32
	limits   *domain.LimitSettings
	// started and gate, when set, hold ban rule loads until gate is closed
	started chan struct{}
	gate    chan struct{}
}

func (r *fakeRepo) IsManaged(_ context.Context, _ int64) (bool, error) {
	return r.managed, nil
}

func (r *fakeRepo) GetBanRules(_ context.Context, _ int64) (*domain.BanRules, error) {
	r.loads.Add(1)
	if r.started != nil {
		r.started <- struct{}{}
		<-r.gate
	}
	if r.failBans {
		return nil, errors.New("store down")
	}
	return &domain.BanRules{Blacklist: []string{"spam.example"}}, nil
}

func (r *fakeRepo) GetGeneral(_ context.Context, _ int64) (*domain.GeneralSettings, error) {
	return &domain.GeneralSettings{WarningEnabled: true}, nil
}

func (r *fakeRepo) GetSilence(_ context.Context, _ int64) (*domain.SilenceSettings, error) {
	return nil, nil
}

func (r *fakeRepo) GetLimits(_ context.Context, _ int64) (*domain.LimitSettings, error) {
	return r.limits, nil
}

type fakeCaps struct{}

func (fakeCaps) LoadCapabilities(_ context.Context, _ int64) (*domain.Capabilities, error) {
	return &domain.Capabilities{Delete: true, Send: true}, nil
}

func TestSnapshotCachesGroups(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	repo := &fakeRepo{managed: true, limits: &domain.LimitSettings{MessagesPerWindow: 5}}
	svc := New(repo, fakeCaps{}, Options{StoreAvailable: true})

	snap, ok := svc.Snapshot(ctx, -1)
	require.True(ok)
	assert.Equal([]string{"spam.example"}, snap.BanRules.Blacklist)
	assert.True(snap.General.WarningEnabled)
	assert.Nil(snap.Silence)
	assert.Equal(5, snap.Limits.MessagesPerWindow)
	assert.True(snap.Capabilities.Delete)

	_, ok = svc.Snapshot(ctx, -1)
	require.True(ok)
	assert.Equal(int32(1), repo.loads.Load())
}

func TestSnapshotConcurrentMissLoadsOnce(t *testing.T) {
	repo := &fakeRepo{managed: true}
	svc := New(repo, nil, Options{StoreAvailable: true})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Snapshot(context.Background(), -2)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), repo.loads.Load())
}

func TestSnapshotFailureCachedAsUnavailable(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	repo := &fakeRepo{managed: true, failBans: true}
	svc := New(repo, nil, Options{StoreAvailable: true})

	snap, ok := svc.Snapshot(ctx, -3)
	assert.True(ok)
	assert.Nil(snap.BanRules)
	assert.Nil(snap.Capabilities)

	repo.failBans = false
	snap, _ = svc.Snapshot(ctx, -3)
	assert.Nil(snap.BanRules)
	assert.Equal(int32(1), repo.loads.Load())
}

func TestInvalidateForcesReload(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	repo := &fakeRepo{managed: true, failBans: true}
	svc := New(repo, nil, Options{StoreAvailable: true})

	svc.Snapshot(ctx, -4)
	repo.failBans = false
	svc.Invalidate(-4, domain.SettingsGroupBanRules)

	snap, ok := svc.Snapshot(ctx, -4)
	assert.True(ok)
	assert.NotNil(snap.BanRules)
	assert.Equal(int32(2), repo.loads.Load())
}

func TestInvalidateDuringLoadDiscardsLoadedValue(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	repo := &fakeRepo{managed: true, started: make(chan struct{}, 2), gate: make(chan struct{})}
	svc := New(repo, nil, Options{StoreAvailable: true})

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Snapshot(ctx, -8)
	}()

	<-repo.started
	svc.Invalidate(-8, domain.SettingsGroupBanRules)
	close(repo.gate)
	<-done

	snap, ok := svc.Snapshot(ctx, -8)
	assert.True(ok)
	assert.NotNil(snap.BanRules)
	assert.Equal(int32(2), repo.loads.Load(), "the load that raced the invalidation must not be cached")

	svc.Snapshot(ctx, -8)
	assert.Equal(int32(2), repo.loads.Load())
}

func TestTTLExpiryRefreshes(t *testing.T) {
	ctx := context.Background()

	repo := &fakeRepo{managed: true}
	svc := New(repo, nil, Options{
		StoreAvailable: true,
		TTL:            map[domain.SettingsGroup]time.Duration{domain.SettingsGroupBanRules: 30 * time.Millisecond},
	})

	svc.Snapshot(ctx, -5)
	time.Sleep(80 * time.Millisecond)
	svc.Snapshot(ctx, -5)

	assert.Equal(t, int32(2), repo.loads.Load())
}

func TestUnmanagedOrNoStoreSkips(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	repo := &fakeRepo{managed: false}
	_, ok := New(repo, nil, Options{StoreAvailable: true}).Snapshot(ctx, -6)
	assert.False(ok)
	assert.Equal(int32(0), repo.loads.Load())

	repo.managed = true
	_, ok = New(repo, nil, Options{StoreAvailable: false}).Snapshot(ctx, -6)
	assert.False(ok)
	assert.Equal(int32(0), repo.loads.Load())
}
