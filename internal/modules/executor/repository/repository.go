package repository

import (
	"context"

	"github.com/reshetovitsme/chat-guard/internal/modules/executor/domain"
)

// PendingStore keeps sends that failed for lack of rights until the bot is
// promoted again
type PendingStore interface {
	SavePending(ctx context.Context, send *domain.PendingSend) error
	// TakePending returns and removes every pending send of chatID.
	TakePending(ctx context.Context, chatID int64) ([]*domain.PendingSend, error)
}
