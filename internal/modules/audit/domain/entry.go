package domain

import (
	"time"

	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
)

// Entry is one persisted moderation or rule audit record
type Entry struct {
	ID        string            `json:"id"`
	ChatID    int64             `json:"chat_id"`
	Kind      action.ActionKind `json:"kind"`
	RuleID    string            `json:"rule_id"`
	UserID    int64             `json:"user_id,omitempty"`
	Summary   string            `json:"summary"`
	Reason    string            `json:"reason,omitempty"`
	Details   map[string]any    `json:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
