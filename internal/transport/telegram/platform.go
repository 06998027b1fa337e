package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	execdomain "github.com/reshetovitsme/chat-guard/internal/modules/executor/domain"
	memberdomain "github.com/reshetovitsme/chat-guard/internal/modules/member/domain"
	sharederrors "github.com/reshetovitsme/chat-guard/internal/shared/errors"
	"github.com/samber/oops"
)

// Platform adapts the Telegram Bot API to the executor and member lookups
type Platform struct {
	bot   *bot.Bot
	botID atomic.Int64
}

// NewPlatform creates an adapter; the bot is attached later with SetBot
func NewPlatform() *Platform {
	return &Platform{}
}

// SetBot attaches the bot client and resolves its own user id
func (p *Platform) SetBot(ctx context.Context, b *bot.Bot) error {
	p.bot = b
	me, err := b.GetMe(ctx)
	if err != nil {
		return oops.With("context", "failed to resolve bot identity").Wrap(classify(err))
	}
	p.botID.Store(me.ID)
	return nil
}

func (p *Platform) BotID() int64 {
	return p.botID.Load()
}

func (p *Platform) GetStanding(ctx context.Context, chatID, userID int64) (*memberdomain.Standing, error) {
	m, err := p.bot.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: chatID, UserID: userID})
	if err != nil {
		return nil, classify(err)
	}
	return standing(m), nil
}

func (p *Platform) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := p.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: messageID})
	return classify(err)
}

func (p *Platform) RestrictMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	_, err := p.bot.RestrictChatMember(ctx, &bot.RestrictChatMemberParams{
		ChatID:      chatID,
		UserID:      userID,
		Permissions: &models.ChatPermissions{},
		UntilDate:   untilDate(until),
	})
	return classify(err)
}

// KickMember removes a member without banning: ban, then lift the ban.
func (p *Platform) KickMember(ctx context.Context, chatID, userID int64) error {
	if _, err := p.bot.BanChatMember(ctx, &bot.BanChatMemberParams{ChatID: chatID, UserID: userID}); err != nil {
		return classify(err)
	}
	_, err := p.bot.UnbanChatMember(ctx, &bot.UnbanChatMemberParams{ChatID: chatID, UserID: userID, OnlyIfBanned: true})
	return classify(err)
}

func (p *Platform) BanMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	_, err := p.bot.BanChatMember(ctx, &bot.BanChatMemberParams{
		ChatID:    chatID,
		UserID:    userID,
		UntilDate: untilDate(until),
	})
	return classify(err)
}

func (p *Platform) SendMessage(ctx context.Context, chatID int64, out execdomain.Outgoing) (int, error) {
	params := &bot.SendMessageParams{
		ChatID:          chatID,
		MessageThreadID: out.ThreadID,
		Text:            out.Text,
		ParseMode:       models.ParseMode(out.ParseMode),
	}
	if out.ReplyToMessageID != 0 {
		params.ReplyParameters = &models.ReplyParameters{
			MessageID:                out.ReplyToMessageID,
			AllowSendingWithoutReply: true,
		}
	}

	msg, err := p.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, classify(err)
	}
	return msg.ID, nil
}

func untilDate(until time.Time) int {
	if until.IsZero() {
		return 0
	}
	return int(until.Unix())
}

func standing(m *models.ChatMember) *memberdomain.Standing {
	switch {
	case m == nil:
		return &memberdomain.Standing{Status: memberdomain.StatusLeft}
	case m.Owner != nil:
		return &memberdomain.Standing{Status: memberdomain.StatusCreator}
	case m.Administrator != nil:
		return &memberdomain.Standing{
			Status:             memberdomain.StatusAdministrator,
			CanDeleteMessages:  m.Administrator.CanDeleteMessages,
			CanRestrictMembers: m.Administrator.CanRestrictMembers,
		}
	case m.Member != nil:
		return &memberdomain.Standing{Status: memberdomain.StatusMember}
	case m.Restricted != nil:
		return &memberdomain.Standing{
			Status:          memberdomain.StatusRestricted,
			CanSendMessages: m.Restricted.CanSendMessages,
		}
	case m.Banned != nil:
		return &memberdomain.Standing{Status: memberdomain.StatusKicked}
	}
	return &memberdomain.Standing{Status: memberdomain.StatusLeft}
}

// classify maps Bot API failures onto the shared error sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var tooMany *bot.TooManyRequestsError
	if errors.As(err, &tooMany) {
		return &sharederrors.RateLimitError{RetryAfter: time.Duration(tooMany.RetryAfter) * time.Second}
	}

	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "topic_closed"), strings.Contains(text, "topic closed"):
		return fmt.Errorf("%w: %w", sharederrors.ErrTopicClosed, err)
	case strings.Contains(text, "message to delete not found"), strings.Contains(text, "message_id_invalid"):
		return fmt.Errorf("%w: %w", sharederrors.ErrMessageNotFound, err)
	case errors.Is(err, bot.ErrorForbidden),
		strings.Contains(text, "not enough rights"),
		strings.Contains(text, "chat_admin_required"),
		strings.Contains(text, "have no rights"):
		return fmt.Errorf("%w: %w", sharederrors.ErrPermissionDenied, err)
	}
	return err
}
