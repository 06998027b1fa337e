// Package service implements the ban guard: quiet hours, the built-in rule
// catalog and the count limits.
package service

import (
	"context"
	"strings"

	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	"github.com/reshetovitsme/chat-guard/internal/shared/window"
	"github.com/samber/lo"
)

const (
	ReasonSilence  = "silence"
	ReasonBanRules = "ban rules"
)

const (
	outcomeClean    = "clean"
	outcomeSilenced = "silenced"
	outcomeBanned   = "banned"
	outcomeLimited  = "limited"
)

// Input is one evaluation request.
type Input struct {
	Facts    *msgdomain.Facts
	Snapshot *domain.Snapshot
	// Role resolves the sender's standing lazily; it is only consulted while
	// the chat is silenced. Nil means unknown.
	Role func(ctx context.Context) msgdomain.Role
}

// Result of a ban guard evaluation.
type Result struct {
	Actions    []action.Action
	Silenced   bool
	Violations []domain.BanRuleKey
	Limits     []string
}

// StopsFirewall reports whether the firewall must be skipped for this message.
func (r Result) StopsFirewall() bool {
	return action.HasDeletion(r.Actions)
}

// Evaluator applies the ban guard to one message at a time
type Evaluator struct {
	windows  window.Store
	patterns *patternCache
}

func New(windows window.Store) *Evaluator {
	return &Evaluator{
		windows:  windows,
		patterns: newPatternCache(1024),
	}
}

// Evaluate runs silence, then the catalog, then the count limits, stopping at
// the first stage that produces actions.
func (e *Evaluator) Evaluate(ctx context.Context, in Input) Result {
	f, snap := in.Facts, in.Snapshot
	if f == nil || snap == nil {
		return Result{}
	}

	if snap.Silence.Silenced(f.SentAt) && !privileged(ctx, in.Role) {
		evaluations.WithLabelValues(outcomeSilenced).Inc()
		return Result{
			Silenced: true,
			Actions:  []action.Action{action.DeleteMessage{MessageID: f.MessageID, Reason: ReasonSilence}},
		}
	}

	if violations := e.violations(f, snap.BanRules); len(violations) > 0 {
		evaluations.WithLabelValues(outcomeBanned).Inc()
		return Result{Violations: violations, Actions: banActions(f, violations)}
	}

	if snap.Limits != nil {
		if reasons := e.checkLimits(ctx, f, snap.Limits.Sanitized()); len(reasons) > 0 {
			evaluations.WithLabelValues(outcomeLimited).Inc()
			return Result{Limits: reasons, Actions: limitActions(f, reasons)}
		}
	}

	evaluations.WithLabelValues(outcomeClean).Inc()
	return Result{}
}

func (e *Evaluator) violations(f *msgdomain.Facts, rules *domain.BanRules) []domain.BanRuleKey {
	if rules == nil {
		return nil
	}
	return lo.Filter(domain.Catalog, func(key domain.BanRuleKey, _ int) bool {
		setting := rules.Setting(key)
		if !setting.Enabled || !setting.Schedule.Active(f.SentAt) {
			return false
		}
		if checks[key](e, f, rules) {
			ruleViolations.WithLabelValues(string(key)).Inc()
			return true
		}
		return false
	})
}

func banActions(f *msgdomain.Facts, violations []domain.BanRuleKey) []action.Action {
	keys := lo.Map(violations, func(k domain.BanRuleKey, _ int) string { return string(k) })
	return []action.Action{
		action.DeleteMessage{MessageID: f.MessageID, Reason: ReasonBanRules},
		action.Log{
			Level:   action.LogLevelInfo,
			Message: "Ban rule violation",
			Details: map[string]any{
				"chat_id":    f.ChatID,
				"user_id":    f.SenderID,
				"message_id": f.MessageID,
				"rules":      keys,
			},
		},
		action.WarnMember{
			UserID:   f.SenderID,
			Reason:   "Violated: " + strings.Join(keys, ", "),
			Severity: action.SeverityMedium,
		},
	}
}

func privileged(ctx context.Context, role func(context.Context) msgdomain.Role) bool {
	if role == nil {
		return false
	}
	r := role(ctx)
	return r == msgdomain.RoleAdmin || r == msgdomain.RoleOwner
}
