package repository

import (
	"context"
	"time"

	"github.com/reshetovitsme/chat-guard/internal/modules/member/domain"
)

// Repository defines the interface for observed member joins
type Repository interface {
	SaveMember(ctx context.Context, member *domain.Member) error
	GetMember(ctx context.Context, chatID, userID int64) (*domain.Member, error)
	DeleteMember(ctx context.Context, chatID, userID int64) error
	// PurgeJoinedBefore drops joins older than cutoff and returns how many.
	PurgeJoinedBefore(ctx context.Context, cutoff time.Time) (int, error)
}
