package service

import (
	"log/slog"
	"strings"
	"time"

	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/firewall/domain"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	"github.com/samber/lo"
)

// toActions turns authored rule actions into intents for the offender.
// Unknown kinds from malformed stored rules are skipped.
func toActions(rule *domain.Rule, f *msgdomain.Facts, authored []domain.RuleAction) []action.Action {
	out := make([]action.Action, 0, len(authored))
	for _, a := range authored {
		switch a.Kind {
		case domain.RuleActionKindDeleteMessage:
			out = append(out, action.DeleteMessage{MessageID: f.MessageID, Reason: rule.Name})

		case domain.RuleActionKindWarn:
			out = append(out, action.WarnMember{
				UserID:   f.SenderID,
				Reason:   lo.CoalesceOrEmpty(a.Message, rule.Name),
				Severity: lo.CoalesceOrEmpty(a.Severity, action.SeverityMedium),
			})

		case domain.RuleActionKindMute:
			out = append(out, action.RestrictMember{
				UserID:          f.SenderID,
				DurationSeconds: max(a.DurationSeconds, 0),
				Reason:          lo.CoalesceOrEmpty(a.Reason, rule.Name),
			})

		case domain.RuleActionKindKick:
			out = append(out, action.KickMember{
				UserID: f.SenderID,
				Reason: lo.CoalesceOrEmpty(a.Reason, rule.Name),
			})

		case domain.RuleActionKindBan:
			var until int64
			if a.DurationSeconds > 0 {
				until = f.SentAt.Add(time.Duration(a.DurationSeconds) * time.Second).Unix()
			}
			out = append(out, action.BanMember{
				UserID:    f.SenderID,
				UntilDate: until,
				Reason:    lo.CoalesceOrEmpty(a.Reason, rule.Name),
			})

		case domain.RuleActionKindLog:
			out = append(out, action.Log{
				Level:   lo.CoalesceOrEmpty(a.Level, action.LogLevelInfo),
				Message: lo.CoalesceOrEmpty(a.Message, "Firewall rule matched"),
				Details: map[string]any{
					"rule_id":    rule.ID,
					"rule_name":  rule.Name,
					"chat_id":    f.ChatID,
					"user_id":    f.SenderID,
					"message_id": f.MessageID,
				},
			})

		default:
			slog.Warn("Skipping unknown firewall action", "rule_id", rule.ID, "kind", a.Kind)
		}
	}
	return out
}

func auditAction(rule *domain.Rule, f *msgdomain.Facts, emitted []action.Action, fired []int, count int) action.RecordRuleAudit {
	kinds := lo.Map(action.Kinds(emitted), func(k action.ActionKind, _ int) string { return k.String() })
	payload := map[string]any{
		"rule_name":  rule.Name,
		"severity":   rule.Severity,
		"chat_id":    f.ChatID,
		"message_id": f.MessageID,
	}
	if rule.Escalation != nil {
		payload["violations"] = count
		payload["escalated_steps"] = fired
	}
	return action.RecordRuleAudit{
		RuleID:        rule.ID,
		OffenderID:    f.SenderID,
		ActionSummary: strings.Join(kinds, ","),
		Payload:       payload,
	}
}
