package domain

import "time"

// Link is a normalized link found in a message
type Link struct {
	Href   string `json:"href"`
	Domain string `json:"domain"`
}

// Facts is the immutable, derived view of one message used by every evaluator.
// It is built once per message by the extractor and never mutated.
type Facts struct {
	MessageID int
	ChatID    int64
	SenderID  int64
	ThreadID  int
	SentAt    time.Time

	Text      string
	LowerText string
	Entities  []Entity
	Links     []Link
	Domains   []string

	HasLink            bool
	HasForward         bool
	ForwardFromChannel bool
	Media              map[MediaKind]bool
	HasCaption         bool
	HasUsername        bool
	HasHashtag         bool
	HasBotCommand      bool
	HasEmoji           bool
	EmojiOnly          bool
	HasContact         bool
	HasLocation        bool
	HasPoll            bool
	HasGame            bool
	HasInlineKeyboard  bool

	HasLatin    bool
	HasPersian  bool
	HasCyrillic bool
	HasHan      bool

	SenderIsBot  bool
	SentViaBot   bool
	IsReply      bool
	IsCrossReply bool
	JoinLeave    bool
}

// HasMedia reports whether the message carries the given media kind
func (f *Facts) HasMedia(kind MediaKind) bool {
	return f.Media[kind]
}

// HasAnyMedia reports whether the message carries any of the given kinds
func (f *Facts) HasAnyMedia(kinds []MediaKind) bool {
	for _, k := range kinds {
		if f.Media[k] {
			return true
		}
	}
	return false
}
