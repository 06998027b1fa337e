package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	"github.com/spaolacci/murmur3"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	ReasonMinWords  = "min words"
	ReasonMaxWords  = "max words"
	ReasonRateLimit = "rate limit"
	ReasonDuplicate = "duplicate message"
)

// checkLimits applies the count limits and returns one reason per violated
// limit. Windowed counters include the current message.
func (e *Evaluator) checkLimits(ctx context.Context, f *msgdomain.Facts, limits domain.LimitSettings) []string {
	var reasons []string

	if words := len(strings.Fields(f.Text)); words > 0 {
		if limits.MinWordsPerMessage > 0 && words < limits.MinWordsPerMessage {
			reasons = append(reasons, ReasonMinWords)
		}
		if limits.MaxWordsPerMessage > 0 && words > limits.MaxWordsPerMessage {
			reasons = append(reasons, ReasonMaxWords)
		}
	}

	if limits.MessagesPerWindow > 0 && limits.WindowMinutes > 0 {
		key := fmt.Sprintf("rate:%d:%d", f.ChatID, f.SenderID)
		if e.exceeds(ctx, key, f.SentAt, time.Duration(limits.WindowMinutes)*time.Minute, limits.MessagesPerWindow) {
			reasons = append(reasons, ReasonRateLimit)
		}
	}

	if limits.DuplicateMessages > 0 && limits.DuplicateWindowMinutes > 0 {
		if normalized := normalizeForDuplicate(f.Text); normalized != "" {
			key := fmt.Sprintf("dup:%d:%d:%x", f.ChatID, f.SenderID, murmur3.Sum64([]byte(normalized)))
			if e.exceeds(ctx, key, f.SentAt, time.Duration(limits.DuplicateWindowMinutes)*time.Minute, limits.DuplicateMessages) {
				reasons = append(reasons, ReasonDuplicate)
			}
		}
	}

	return reasons
}

// exceeds records a hit and reports whether the window now holds more than
// limit hits. Store failures never block a message.
func (e *Evaluator) exceeds(ctx context.Context, key string, at time.Time, span time.Duration, limit int) bool {
	count, err := e.windows.Hit(ctx, key, at, span)
	if err != nil {
		slog.Warn("Sliding window unavailable", "key", key, "error", err)
		return false
	}
	return count > limit
}

// normalizeForDuplicate folds case and compatibility forms and collapses
// whitespace so trivially altered copies hash alike.
func normalizeForDuplicate(text string) string {
	return strings.Join(strings.Fields(cases.Fold().String(norm.NFKC.String(text))), " ")
}

func limitActions(f *msgdomain.Facts, reasons []string) []action.Action {
	actions := make([]action.Action, 0, len(reasons))
	for _, r := range reasons {
		actions = append(actions, action.DeleteMessage{MessageID: f.MessageID, Reason: r})
	}
	return actions
}
