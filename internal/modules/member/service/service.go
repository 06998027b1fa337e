package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/reshetovitsme/chat-guard/internal/modules/member/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/member/repository"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	policydomain "github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	sharederrors "github.com/reshetovitsme/chat-guard/internal/shared/errors"
)

// Lookup performs live membership lookups on the platform
type Lookup interface {
	GetStanding(ctx context.Context, chatID, userID int64) (*domain.Standing, error)
	BotID() int64
}

type joinKey struct {
	chatID int64
	userID int64
}

// Service handles member joins, sender roles and the bot's own capabilities
type Service struct {
	repo      repository.Repository
	lookup    Lookup
	newWindow time.Duration
	// joins remembers recent join lookups, including misses, to keep the
	// join store off the hot path.
	joins *expirable.LRU[joinKey, *domain.Member]
}

// New creates a new member service
func New(repo repository.Repository, lookup Lookup, newWindow time.Duration) *Service {
	return &Service{
		repo:      repo,
		lookup:    lookup,
		newWindow: newWindow,
		joins:     expirable.NewLRU[joinKey, *domain.Member](50_000, nil, time.Minute),
	}
}

// RecordJoin remembers when a user joined a chat
func (s *Service) RecordJoin(ctx context.Context, chatID, userID int64, username string, at time.Time) error {
	m := &domain.Member{ChatID: chatID, UserID: userID, Username: username, JoinedAt: at.UTC()}
	s.joins.Add(joinKey{chatID, userID}, m)
	return s.repo.SaveMember(ctx, m)
}

// RecordLeave forgets the join of a user who left
func (s *Service) RecordLeave(ctx context.Context, chatID, userID int64) error {
	s.joins.Add(joinKey{chatID, userID}, nil)
	return s.repo.DeleteMember(ctx, chatID, userID)
}

// ResolveRole classifies the sender. Lookup failures yield RoleUnknown.
func (s *Service) ResolveRole(ctx context.Context, chatID, userID int64, at time.Time) msgdomain.Role {
	standing, err := s.lookup.GetStanding(ctx, chatID, userID)
	if err != nil {
		slog.Debug("Failed to resolve member standing", "chat_id", chatID, "user_id", userID, "error", err)
		return msgdomain.RoleUnknown
	}
	if standing.Status != domain.StatusMember {
		return standing.Role(nil, s.newWindow, at)
	}
	return standing.Role(s.join(ctx, chatID, userID), s.newWindow, at)
}

func (s *Service) join(ctx context.Context, chatID, userID int64) *domain.Member {
	key := joinKey{chatID, userID}
	if m, ok := s.joins.Get(key); ok {
		return m
	}

	m, err := s.repo.GetMember(ctx, chatID, userID)
	if err != nil {
		if !errors.Is(err, sharederrors.ErrMemberNotFound) {
			slog.Warn("Failed to load member join", "chat_id", chatID, "user_id", userID, "error", err)
			return nil
		}
		m = nil
	}
	s.joins.Add(key, m)
	return m
}

// LoadCapabilities resolves the bot's own rights in chatID.
func (s *Service) LoadCapabilities(ctx context.Context, chatID int64) (*policydomain.Capabilities, error) {
	standing, err := s.lookup.GetStanding(ctx, chatID, s.lookup.BotID())
	if err != nil {
		return nil, err
	}
	caps := standing.Capabilities()
	return &caps, nil
}

// Purge drops joins that can no longer make anyone new.
func (s *Service) Purge(ctx context.Context, now time.Time) (int, error) {
	if s.newWindow <= 0 {
		return 0, nil
	}
	return s.repo.PurgeJoinedBefore(ctx, now.Add(-s.newWindow))
}
