// Package domain defines the action intents produced by the ban guard and the
// firewall engine and consumed by the executor and the audit sink.
package domain

import (
	"log/slog"

	"github.com/samber/lo"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Action is a closed sum type: only the variants in this file implement it.
type Action interface {
	Kind() ActionKind
	isAction()
}

type DeleteMessage struct {
	MessageID int
	Reason    string
}

type WarnMember struct {
	UserID   int64
	Reason   string
	Severity string
}

type RestrictMember struct {
	UserID          int64
	DurationSeconds int
	Reason          string
}

type KickMember struct {
	UserID int64
	Reason string
}

type BanMember struct {
	UserID int64
	// UntilDate is epoch seconds; zero bans forever.
	UntilDate int64
	Reason    string
}

type SendMessage struct {
	Text                  string
	ReplyToMessageID      int
	ParseMode             string
	AutoDeleteSeconds     int
	ThreadID              int
	RescheduleOnPromotion bool
}

type RecordModeration struct {
	RuleID   string
	UserID   int64
	Actions  []ActionKind
	Reason   string
	Metadata map[string]any
}

type RecordRuleAudit struct {
	RuleID        string
	OffenderID    int64
	ActionSummary string
	Payload       map[string]any
}

type Log struct {
	Level   LogLevel
	Message string
	Details map[string]any
}

type Noop struct{}

func (DeleteMessage) Kind() ActionKind    { return ActionKindDeleteMessage }
func (WarnMember) Kind() ActionKind       { return ActionKindWarnMember }
func (RestrictMember) Kind() ActionKind   { return ActionKindRestrictMember }
func (KickMember) Kind() ActionKind       { return ActionKindKickMember }
func (BanMember) Kind() ActionKind        { return ActionKindBanMember }
func (SendMessage) Kind() ActionKind      { return ActionKindSendMessage }
func (RecordModeration) Kind() ActionKind { return ActionKindRecordModeration }
func (RecordRuleAudit) Kind() ActionKind  { return ActionKindRecordRuleAudit }
func (Log) Kind() ActionKind              { return ActionKindLog }
func (Noop) Kind() ActionKind             { return ActionKindNoop }

func (DeleteMessage) isAction()    {}
func (WarnMember) isAction()       {}
func (RestrictMember) isAction()   {}
func (KickMember) isAction()       {}
func (BanMember) isAction()        {}
func (SendMessage) isAction()      {}
func (RecordModeration) isAction() {}
func (RecordRuleAudit) isAction()  {}
func (Log) isAction()              {}
func (Noop) isAction()             {}

// Kinds lists the kinds of actions in order.
func Kinds(actions []Action) []ActionKind {
	return lo.Map(actions, func(a Action, _ int) ActionKind { return a.Kind() })
}

// HasDeletion reports whether any action deletes a message.
func HasDeletion(actions []Action) bool {
	return lo.ContainsBy(actions, func(a Action) bool { return a.Kind() == ActionKindDeleteMessage })
}

// SlogLevel maps a log intent level onto slog, defaulting to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
