package service

import (
	"log/slog"

	policydomain "github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// RulesGroup names the firewall rule cache in invalidation signals.
const RulesGroup = "rules"

// Invalidation is an external signal that cached policy changed. Empty Groups
// voids everything cached for the chat. ChatID zero with the rules group
// voids the rules of every chat, which a global rule edit requires.
type Invalidation struct {
	ChatID int64    `json:"chatId"`
	Groups []string `json:"groups,omitempty"`
}

// PolicyInvalidator voids cached settings groups
type PolicyInvalidator interface {
	Invalidate(chatID int64, groups ...policydomain.SettingsGroup)
}

// RuleInvalidator voids cached firewall rules
type RuleInvalidator interface {
	InvalidateRules(chatID int64)
}

// Invalidator applies invalidation signals to the policy and rule caches
type Invalidator struct {
	policy PolicyInvalidator
	rules  RuleInvalidator
}

func NewInvalidator(policy PolicyInvalidator, rules RuleInvalidator) *Invalidator {
	return &Invalidator{policy: policy, rules: rules}
}

// Apply validates the signal and voids the named caches. Unknown groups
// reject the whole signal.
func (i *Invalidator) Apply(inv Invalidation) error {
	var groups []policydomain.SettingsGroup
	rules := len(inv.Groups) == 0
	for _, name := range lo.Uniq(inv.Groups) {
		if name == RulesGroup {
			rules = true
			continue
		}
		g, err := policydomain.ParseSettingsGroup(name)
		if err != nil {
			return oops.With("chat_id", inv.ChatID, "group", name).Wrap(err)
		}
		groups = append(groups, g)
	}

	if inv.ChatID != 0 && (len(inv.Groups) == 0 || len(groups) > 0) {
		i.policy.Invalidate(inv.ChatID, groups...)
	}
	if rules {
		i.rules.InvalidateRules(inv.ChatID)
	}

	slog.Info("Policy cache invalidated", "chat_id", inv.ChatID, "groups", inv.Groups)
	return nil
}
