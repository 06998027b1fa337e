// Package domain holds the firewall rule model and its authoring validation.
package domain

import (
	"time"

	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
)

const (
	MatchAny = "any"
	MatchAll = "all"
)

// Condition is a single predicate of a rule. Only the fields of its Kind are
// meaningful.
type Condition struct {
	Kind ConditionKind `json:"kind" mapstructure:"kind"`

	// text_contains
	Text          string `json:"text,omitempty" mapstructure:"text"`
	CaseSensitive bool   `json:"caseSensitive,omitempty" mapstructure:"caseSensitive"`

	// regex
	Pattern string `json:"pattern,omitempty" mapstructure:"pattern"`
	Flags   string `json:"flags,omitempty" mapstructure:"flags"`

	// keyword
	Keywords []string `json:"keywords,omitempty" mapstructure:"keywords"`
	Match    string   `json:"match,omitempty" mapstructure:"match"`

	// media_type
	MediaTypes []msgdomain.MediaKind `json:"mediaTypes,omitempty" mapstructure:"mediaTypes"`

	// link_domain
	Domains         []string `json:"domains,omitempty" mapstructure:"domains"`
	AllowSubdomains bool     `json:"allowSubdomains,omitempty" mapstructure:"allowSubdomains"`

	// user_role
	Roles []msgdomain.Role `json:"roles,omitempty" mapstructure:"roles"`

	// time_range; an empty timezone is UTC
	StartHour int    `json:"startHour,omitempty" mapstructure:"startHour"`
	EndHour   int    `json:"endHour,omitempty" mapstructure:"endHour"`
	Timezone  string `json:"timezone,omitempty" mapstructure:"timezone"`

	// message_length, zero is unbounded
	MinLength int `json:"minLength,omitempty" mapstructure:"minLength"`
	MaxLength int `json:"maxLength,omitempty" mapstructure:"maxLength"`
}

// RuleAction is a consequence of a matched rule
type RuleAction struct {
	Kind RuleActionKind `json:"kind" mapstructure:"kind"`

	Message         string          `json:"message,omitempty" mapstructure:"message"`
	Severity        string          `json:"severity,omitempty" mapstructure:"severity"`
	DurationSeconds int             `json:"durationSeconds,omitempty" mapstructure:"durationSeconds"`
	Reason          string          `json:"reason,omitempty" mapstructure:"reason"`
	Level           action.LogLevel `json:"level,omitempty" mapstructure:"level"`
}

type EscalationStep struct {
	Threshold     int          `json:"threshold" mapstructure:"threshold"`
	WindowSeconds int          `json:"windowSeconds" mapstructure:"windowSeconds"`
	Actions       []RuleAction `json:"actions" mapstructure:"actions"`
}

// Escalation upgrades a rule's consequences for repeat offenders
type Escalation struct {
	Steps             []EscalationStep `json:"steps" mapstructure:"steps"`
	ResetAfterSeconds int              `json:"resetAfterSeconds,omitempty" mapstructure:"resetAfterSeconds"`
}

// Window is the longest step window; hits older than it are never needed.
func (e *Escalation) Window() time.Duration {
	longest := 0
	for _, s := range e.Steps {
		longest = max(longest, s.WindowSeconds)
	}
	return time.Duration(longest) * time.Second
}

// ResetAfter is the inactivity gap that clears an offender's history.
func (e *Escalation) ResetAfter() time.Duration {
	return time.Duration(e.ResetAfterSeconds) * time.Second
}

// Rule is a user-authored firewall rule
type Rule struct {
	ID          string       `json:"id" mapstructure:"id"`
	Scope       Scope        `json:"scope" mapstructure:"scope"`
	ChatID      int64        `json:"chatId,omitempty" mapstructure:"chatId"`
	Name        string       `json:"name" mapstructure:"name"`
	Description string       `json:"description,omitempty" mapstructure:"description"`
	Enabled     bool         `json:"enabled" mapstructure:"enabled"`
	Priority    int          `json:"priority" mapstructure:"priority"`
	MatchAll    bool         `json:"matchAll" mapstructure:"matchAll"`
	Severity    int          `json:"severity" mapstructure:"severity"`
	Conditions  []Condition  `json:"conditions" mapstructure:"conditions"`
	Actions     []RuleAction `json:"actions" mapstructure:"actions"`
	Escalation  *Escalation  `json:"escalation,omitempty" mapstructure:"escalation"`
	UpdatedAt   time.Time    `json:"updatedAt" mapstructure:"updatedAt"`
}

// AppliesTo reports whether the rule is in scope for chatID.
func (r *Rule) AppliesTo(chatID int64) bool {
	switch r.Scope {
	case ScopeGlobal:
		return true
	case ScopeGroup:
		return r.ChatID == chatID
	}
	return false
}
