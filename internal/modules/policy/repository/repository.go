package repository

import (
	"context"

	"github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
)

// Repository is the settings store contract the moderation core reads from.
// Implementations are owned by the control panel; the core never writes
// policy, only the admin-restricted flag.
type Repository interface {
	IsManaged(ctx context.Context, chatID int64) (bool, error)
	GetBanRules(ctx context.Context, chatID int64) (*domain.BanRules, error)
	GetGeneral(ctx context.Context, chatID int64) (*domain.GeneralSettings, error)
	GetSilence(ctx context.Context, chatID int64) (*domain.SilenceSettings, error)
	GetLimits(ctx context.Context, chatID int64) (*domain.LimitSettings, error)
}

// GroupState records chats where the bot lost its admin rights
type GroupState interface {
	SetAdminRestricted(ctx context.Context, chatID int64, restricted bool) error
}

// ChatPolicy is the stored document for one managed chat
type ChatPolicy struct {
	ChatID          int64                   `json:"chatId"`
	BanRules        *domain.BanRules        `json:"banRules,omitempty"`
	General         *domain.GeneralSettings `json:"general,omitempty"`
	Silence         *domain.SilenceSettings `json:"silence,omitempty"`
	Limits          *domain.LimitSettings   `json:"limits,omitempty"`
	AdminRestricted bool                    `json:"adminRestricted"`
}
