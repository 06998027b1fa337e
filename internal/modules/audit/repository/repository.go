package repository

import (
	"context"

	"github.com/reshetovitsme/chat-guard/internal/modules/audit/domain"
)

// Repository defines the interface for audit entry persistence
type Repository interface {
	SaveEntry(ctx context.Context, entry *domain.Entry) error
	// GetEntries returns up to limit entries of a chat, newest first.
	GetEntries(ctx context.Context, chatID int64, limit int) ([]*domain.Entry, error)
}
