package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingBotToken  = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	ErrChatNotManaged   = errors.New("chat is not managed by this instance")
	ErrRuleNotFound     = errors.New("firewall rule not found")
	ErrInvalidRule      = errors.New("invalid firewall rule")
	ErrPermissionDenied = errors.New("permission denied")
	ErrTopicClosed      = errors.New("topic closed")
	ErrMessageNotFound  = errors.New("message not found")
	ErrMemberNotFound   = errors.New("member join not found")
)

// RateLimitError is returned by platform calls rejected for flooding.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// AsRateLimit reports whether err carries a rate limit hint.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
