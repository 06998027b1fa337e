package domain

// EntityType mirrors the platform's message entity types
type EntityType string

const (
	EntityURL        EntityType = "url"
	EntityTextLink   EntityType = "text_link"
	EntityMention    EntityType = "mention"
	EntityHashtag    EntityType = "hashtag"
	EntityBotCommand EntityType = "bot_command"
)

// Entity is a formatted span of the message text. Offset and Length are in
// UTF-16 code units, as delivered by the platform.
type Entity struct {
	Type   EntityType `json:"type"`
	Offset int        `json:"offset"`
	Length int        `json:"length"`
	URL    string     `json:"url,omitempty"`
}

// Sender describes the author of an inbound message
type Sender struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	IsBot    bool   `json:"is_bot"`
	// Role is filled by the transport when it is already known.
	Role Role `json:"role,omitempty"`
}

// Message is the inbound message contract consumed by the moderation core
type Message struct {
	ID          int         `json:"id"`
	Date        int64       `json:"date"`
	ChatID      int64       `json:"chat_id"`
	ChatIsForum bool        `json:"chat_is_forum"`
	ThreadID    int         `json:"thread_id,omitempty"`
	Sender      Sender      `json:"sender"`
	Text        string      `json:"text,omitempty"`
	Caption     string      `json:"caption,omitempty"`
	Entities    []Entity    `json:"entities,omitempty"`
	Media       []MediaKind `json:"media,omitempty"`

	Forwarded          bool `json:"forwarded"`
	ForwardFromChannel bool `json:"forward_from_channel"`
	ViaBot             bool `json:"via_bot"`

	HasContact        bool `json:"has_contact"`
	HasLocation       bool `json:"has_location"`
	HasPoll           bool `json:"has_poll"`
	HasGame           bool `json:"has_game"`
	HasInlineKeyboard bool `json:"has_inline_keyboard"`

	// ReplyToAuthorID is zero when the message is not a reply.
	IsReply         bool  `json:"is_reply"`
	ReplyToAuthorID int64 `json:"reply_to_author_id,omitempty"`

	// JoinLeave marks service messages about members joining or leaving.
	JoinLeave bool `json:"join_leave"`
}

// Body returns the text, or the caption for media messages
func (m Message) Body() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}
