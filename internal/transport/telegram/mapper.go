package telegram

import (
	"github.com/go-telegram/bot/models"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	"github.com/samber/lo"
)

// toMessage maps a platform message onto the inbound contract. ok is false
// for messages the moderation core never looks at.
func toMessage(msg *models.Message) (msgdomain.Message, bool) {
	if msg == nil || (msg.Chat.Type != "group" && msg.Chat.Type != "supergroup") {
		return msgdomain.Message{}, false
	}

	out := msgdomain.Message{
		ID:          msg.ID,
		Date:        int64(msg.Date),
		ChatID:      msg.Chat.ID,
		ChatIsForum: msg.Chat.IsForum,
		ThreadID:    msg.MessageThreadID,
		Sender:      sender(msg),
		Text:        msg.Text,
		Caption:     msg.Caption,
		Entities:    entities(msg),
		Media:       media(msg),

		Forwarded:          msg.ForwardOrigin != nil,
		ForwardFromChannel: msg.ForwardOrigin != nil && msg.ForwardOrigin.MessageOriginChannel != nil,
		ViaBot:             msg.ViaBot != nil,

		HasContact:        msg.Contact != nil,
		HasLocation:       msg.Location != nil || msg.Venue != nil,
		HasPoll:           msg.Poll != nil,
		HasGame:           msg.Game != nil,
		HasInlineKeyboard: msg.ReplyMarkup != nil && len(msg.ReplyMarkup.InlineKeyboard) > 0,

		JoinLeave: len(msg.NewChatMembers) > 0 || msg.LeftChatMember != nil,
	}

	// a forum thread root is not a reply to anyone
	if reply := msg.ReplyToMessage; reply != nil && !(msg.IsTopicMessage && reply.ID == msg.MessageThreadID) {
		out.IsReply = true
		out.ReplyToAuthorID = sender(reply).ID
	}

	return out, true
}

func sender(msg *models.Message) msgdomain.Sender {
	switch {
	case msg.SenderChat != nil:
		s := msgdomain.Sender{ID: msg.SenderChat.ID, Username: msg.SenderChat.Username}
		// anonymous administrators post on behalf of the group itself
		if msg.SenderChat.ID == msg.Chat.ID {
			s.Role = msgdomain.RoleAdmin
		}
		return s
	case msg.From != nil:
		return msgdomain.Sender{ID: msg.From.ID, Username: msg.From.Username, IsBot: msg.From.IsBot}
	}
	return msgdomain.Sender{}
}

func entities(msg *models.Message) []msgdomain.Entity {
	source := msg.Entities
	if msg.Text == "" {
		source = msg.CaptionEntities
	}
	return lo.Map(source, func(e models.MessageEntity, _ int) msgdomain.Entity {
		return msgdomain.Entity{
			Type:   msgdomain.EntityType(e.Type),
			Offset: e.Offset,
			Length: e.Length,
			URL:    e.URL,
		}
	})
}

func media(msg *models.Message) []msgdomain.MediaKind {
	kinds := map[msgdomain.MediaKind]bool{
		msgdomain.MediaKindSticker:   msg.Sticker != nil,
		msgdomain.MediaKindPhoto:     len(msg.Photo) > 0,
		msgdomain.MediaKindVideo:     msg.Video != nil,
		msgdomain.MediaKindVideoNote: msg.VideoNote != nil,
		msgdomain.MediaKindVoice:     msg.Voice != nil,
		msgdomain.MediaKindAudio:     msg.Audio != nil,
		// animations also arrive with a document attached
		msgdomain.MediaKindDocument:  msg.Document != nil && msg.Animation == nil,
		msgdomain.MediaKindAnimation: msg.Animation != nil,
	}
	return lo.Filter(lo.Map(msgdomain.MediaKindNames(), func(name string, _ int) msgdomain.MediaKind {
		return msgdomain.MediaKind(name)
	}), func(k msgdomain.MediaKind, _ int) bool {
		return kinds[k]
	})
}
