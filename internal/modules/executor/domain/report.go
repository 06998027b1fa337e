package domain

import (
	"time"

	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
)

const (
	SkipMissingCapability = "missing capability"
	SkipRateLimited       = "rate limited"
	SkipDuplicate         = "duplicate"
	SkipWarningsDisabled  = "warnings disabled"
)

type Skip struct {
	Kind   action.ActionKind
	Reason string
}

type Failure struct {
	Kind action.ActionKind
	Err  error
}

// Report summarizes one Execute call
type Report struct {
	Executed    []action.ActionKind
	Skipped     []Skip
	Failed      []Failure
	Rescheduled int
	RateLimited bool
	RetryAfter  time.Duration
}

// PendingSend is a message to deliver once the bot regains its rights
type PendingSend struct {
	ID               string    `json:"id"`
	ChatID           int64     `json:"chat_id"`
	Text             string    `json:"text"`
	ParseMode        string    `json:"parse_mode,omitempty"`
	ThreadID         int       `json:"thread_id,omitempty"`
	ReplyToMessageID int       `json:"reply_to_message_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Outgoing is a message send request to the platform
type Outgoing struct {
	Text             string
	ParseMode        string
	ThreadID         int
	ReplyToMessageID int
}
