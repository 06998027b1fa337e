package repository

import (
	"context"

	"github.com/reshetovitsme/chat-guard/internal/modules/firewall/domain"
)

// Repository defines the firewall rule store the engine reads from
// This abstraction allows easy replacement of storage implementations
// (e.g., FileStorage -> PostgreSQL)
type Repository interface {
	// ListRules returns the global rules plus the group rules of chatID,
	// enabled or not, in no particular order.
	ListRules(ctx context.Context, chatID int64) ([]*domain.Rule, error)
	GetRule(ctx context.Context, ruleID string) (*domain.Rule, error)
	// SaveRule validates an authored rule and persists it. Invalid rules are
	// never written.
	SaveRule(ctx context.Context, raw map[string]any) (*domain.Rule, error)
	DeleteRule(ctx context.Context, ruleID string) error
}
