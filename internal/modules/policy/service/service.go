// Package service implements the per-chat policy cache. Each settings group is
// cached independently with its own TTL; load failures are cached as
// "unavailable" for the same TTL so an unreachable store is not hammered.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/policy/repository"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

const defaultTTL = 45 * time.Second

// CapabilityLoader resolves the bot's own rights in a chat
type CapabilityLoader interface {
	LoadCapabilities(ctx context.Context, chatID int64) (*domain.Capabilities, error)
}

// Options configures the cache
type Options struct {
	// StoreAvailable false means no policy store is deployed; every chat is
	// then treated as unmanaged and nothing is enforced.
	StoreAvailable bool
	TTL            map[domain.SettingsGroup]time.Duration
	Size           int
}

// entry wraps a cached group value; a nil value marks "unavailable".
type entry struct {
	value any
}

// Service serves settings groups per chat with bounded staleness
type Service struct {
	repo           repository.Repository
	caps           CapabilityLoader
	storeAvailable bool

	groups  map[domain.SettingsGroup]*expirable.LRU[int64, entry]
	managed *expirable.LRU[int64, bool]
	flight  singleflight.Group
	// gens counts invalidations per flight key; a load only fills the cache
	// when no invalidation happened while it was fetching.
	gens *xsync.MapOf[string, uint64]
}

// New creates a new policy cache. caps may be nil when capability lookups are
// not available.
func New(repo repository.Repository, caps CapabilityLoader, opts Options) *Service {
	size := opts.Size
	if size <= 0 {
		size = 10_000
	}

	ttl := func(g domain.SettingsGroup) time.Duration {
		if d, ok := opts.TTL[g]; ok && d > 0 {
			return d
		}
		return defaultTTL
	}

	groups := make(map[domain.SettingsGroup]*expirable.LRU[int64, entry], len(domain.SettingsGroupNames()))
	for _, name := range domain.SettingsGroupNames() {
		g := domain.SettingsGroup(name)
		groups[g] = expirable.NewLRU[int64, entry](size, nil, ttl(g))
	}

	return &Service{
		repo:           repo,
		caps:           caps,
		storeAvailable: opts.StoreAvailable && repo != nil,
		groups:         groups,
		managed:        expirable.NewLRU[int64, bool](size, nil, ttl(domain.SettingsGroupGeneral)),
		gens:           xsync.NewMapOf[string, uint64](),
	}
}

// Snapshot returns every settings group of chatID. ok is false when the store
// is absent or the chat is not managed; callers must then skip enforcement.
func (s *Service) Snapshot(ctx context.Context, chatID int64) (*domain.Snapshot, bool) {
	if !s.storeAvailable || !s.isManaged(ctx, chatID) {
		return nil, false
	}

	return &domain.Snapshot{
		ChatID:       chatID,
		BanRules:     load(ctx, s, domain.SettingsGroupBanRules, chatID, s.repo.GetBanRules),
		General:      load(ctx, s, domain.SettingsGroupGeneral, chatID, s.repo.GetGeneral),
		Silence:      load(ctx, s, domain.SettingsGroupSilence, chatID, s.repo.GetSilence),
		Limits:       load(ctx, s, domain.SettingsGroupLimits, chatID, s.repo.GetLimits),
		Capabilities: s.Capabilities(ctx, chatID),
	}, true
}

// Capabilities returns the cached rights of the bot in chatID, nil when unknown.
func (s *Service) Capabilities(ctx context.Context, chatID int64) *domain.Capabilities {
	if s.caps == nil {
		return nil
	}
	return load(ctx, s, domain.SettingsGroupCapabilities, chatID, s.caps.LoadCapabilities)
}

// Invalidate voids the cached groups of chatID. With no groups given every
// group, and the managed flag, is dropped.
func (s *Service) Invalidate(chatID int64, groups ...domain.SettingsGroup) {
	if len(groups) == 0 {
		s.void(managedKey(chatID), func() { s.managed.Remove(chatID) })
		groups = lo.Keys(s.groups)
	}
	for _, g := range groups {
		if cache, ok := s.groups[g]; ok {
			s.void(groupKey(g, chatID), func() { cache.Remove(chatID) })
		}
	}
	cacheInvalidations.Add(float64(len(groups)))
}

// void removes a cached value and discards loads of key already in flight.
func (s *Service) void(key string, remove func()) {
	s.gens.Compute(key, func(gen uint64, _ bool) (uint64, bool) {
		remove()
		return gen + 1, false
	})
	s.flight.Forget(key)
}

// fill stores a loaded value unless key was invalidated after gen was read.
func (s *Service) fill(key string, gen uint64, add func()) {
	s.gens.Compute(key, func(current uint64, _ bool) (uint64, bool) {
		if current == gen {
			add()
		}
		return current, false
	})
}

func (s *Service) generation(key string) uint64 {
	gen, _ := s.gens.Load(key)
	return gen
}

func managedKey(chatID int64) string {
	return fmt.Sprintf("managed/%d", chatID)
}

func groupKey(group domain.SettingsGroup, chatID int64) string {
	return fmt.Sprintf("%s/%d", group, chatID)
}

func (s *Service) isManaged(ctx context.Context, chatID int64) bool {
	if v, ok := s.managed.Get(chatID); ok {
		return v
	}

	key := managedKey(chatID)
	v, _, _ := s.flight.Do(key, func() (any, error) {
		if v, ok := s.managed.Get(chatID); ok {
			return v, nil
		}
		gen := s.generation(key)
		managed, err := s.repo.IsManaged(ctx, chatID)
		if err != nil {
			slog.Warn("Policy store unreachable", "chat_id", chatID, "error", err)
			managed = false
		}
		s.fill(key, gen, func() { s.managed.Add(chatID, managed) })
		return managed, nil
	})
	return v.(bool)
}

func load[T any](ctx context.Context, s *Service, group domain.SettingsGroup, chatID int64, fetch func(context.Context, int64) (*T, error)) *T {
	cache := s.groups[group]
	if e, ok := cache.Get(chatID); ok {
		cacheHits.WithLabelValues(group.String()).Inc()
		return asValue[T](e)
	}

	key := groupKey(group, chatID)
	v, _, _ := s.flight.Do(key, func() (any, error) {
		// a flight that finished between our miss and Do already filled the cache
		if e, ok := cache.Get(chatID); ok {
			return e, nil
		}
		gen := s.generation(key)
		cacheLoads.WithLabelValues(group.String()).Inc()
		value, err := fetch(ctx, chatID)
		if err != nil {
			cacheLoadErrors.WithLabelValues(group.String()).Inc()
			slog.Warn("Failed to load settings group", "group", group, "chat_id", chatID, "error", err)
			value = nil
		}
		e := entry{}
		if value != nil {
			e.value = value
		}
		s.fill(key, gen, func() { cache.Add(chatID, e) })
		return e, nil
	})
	return asValue[T](v.(entry))
}

func asValue[T any](e entry) *T {
	if e.value == nil {
		return nil
	}
	return e.value.(*T)
}
