// Package domain holds the per-message execution state shared by the executor
// and the pipeline.
package domain

import (
	"sync"
	"time"

	policydomain "github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
)

// ProcessingContext is the execution state of one inbound message. It is
// created by the pipeline and discarded afterwards.
type ProcessingContext struct {
	ChatID      int64
	ChatIsForum bool
	ThreadID    int
	MessageID   int
	SenderID    int64
	General     *policydomain.GeneralSettings

	Capabilities *CapabilityCache

	mu            sync.Mutex
	rateLimitedAt time.Time
	retryAfter    time.Duration
}

// NewProcessingContext creates the state for one message. seed may carry
// capabilities already known from the policy cache.
func NewProcessingContext(chatID int64, seed *policydomain.Capabilities) *ProcessingContext {
	return &ProcessingContext{
		ChatID:       chatID,
		Capabilities: NewCapabilityCache(seed),
	}
}

// MarkRateLimited records a rate limit response and its retry-after hint.
func (p *ProcessingContext) MarkRateLimited(at time.Time, retryAfter time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rateLimitedAt = at
	p.retryAfter = retryAfter
}

// RateLimited returns when the platform last rate limited this context and
// the hint it gave. ok is false when it never did.
func (p *ProcessingContext) RateLimited() (at time.Time, retryAfter time.Duration, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rateLimitedAt, p.retryAfter, !p.rateLimitedAt.IsZero()
}
