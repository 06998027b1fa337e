package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	memberdomain "github.com/reshetovitsme/chat-guard/internal/modules/member/domain"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	moderation "github.com/reshetovitsme/chat-guard/internal/modules/moderation/service"
	policydomain "github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
)

// Moderator runs the moderation pipeline on one message
type Moderator interface {
	Process(ctx context.Context, msg msgdomain.Message) (*moderation.Outcome, error)
}

// MemberTracker remembers joins for new-member detection
type MemberTracker interface {
	RecordJoin(ctx context.Context, chatID, userID int64, username string, at time.Time) error
	RecordLeave(ctx context.Context, chatID, userID int64) error
}

// PendingFlusher redelivers sends deferred while the bot lacked rights
type PendingFlusher interface {
	FlushPending(ctx context.Context, chatID int64) (int, error)
}

// CapabilityInvalidator voids cached bot capabilities of a chat
type CapabilityInvalidator interface {
	Invalidate(chatID int64, groups ...policydomain.SettingsGroup)
}

// Handler handles Telegram updates
type Handler struct {
	moderator   Moderator
	members     MemberTracker
	pending     PendingFlusher
	invalidator CapabilityInvalidator
	botID       func() int64
}

// New creates a new Telegram handler
func New(moderator Moderator, members MemberTracker, pending PendingFlusher, invalidator CapabilityInvalidator, platform *Platform) *Handler {
	return &Handler{
		moderator:   moderator,
		members:     members,
		pending:     pending,
		invalidator: invalidator,
		botID:       platform.BotID,
	}
}

// HandleUpdate processes incoming updates
func (h *Handler) HandleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	switch {
	case update.Message != nil:
		h.processMessage(ctx, update.Message)
	case update.EditedMessage != nil:
		h.processMessage(ctx, update.EditedMessage)
	case update.MyChatMember != nil:
		h.processBotStanding(ctx, update.MyChatMember)
	}
}

func (h *Handler) processMessage(ctx context.Context, raw *models.Message) {
	msg, ok := toMessage(raw)
	if !ok || msg.Sender.ID == h.botID() {
		return
	}

	if msg.JoinLeave {
		h.recordMembership(ctx, raw)
	}

	out, err := h.moderator.Process(ctx, msg)
	if err != nil {
		slog.Error("Error processing message", "error", err, "chat_id", msg.ChatID, "message_id", msg.ID)
		return
	}

	if len(out.Actions) > 0 {
		slog.Info("Message moderated",
			"chat_id", msg.ChatID,
			"message_id", msg.ID,
			"user_id", msg.Sender.ID,
			"executed", len(out.Report.Executed),
			"skipped", len(out.Report.Skipped),
			"failed", len(out.Report.Failed))
	}
}

func (h *Handler) recordMembership(ctx context.Context, raw *models.Message) {
	at := time.Unix(int64(raw.Date), 0)
	for _, u := range raw.NewChatMembers {
		if u.IsBot {
			continue
		}
		if err := h.members.RecordJoin(ctx, raw.Chat.ID, u.ID, u.Username, at); err != nil {
			slog.Error("Failed to record member join", "error", err, "chat_id", raw.Chat.ID, "user_id", u.ID)
		}
	}
	if u := raw.LeftChatMember; u != nil {
		if err := h.members.RecordLeave(ctx, raw.Chat.ID, u.ID); err != nil {
			slog.Error("Failed to record member leave", "error", err, "chat_id", raw.Chat.ID, "user_id", u.ID)
		}
	}
}

// processBotStanding reacts to the bot's own rights changing in a chat.
func (h *Handler) processBotStanding(ctx context.Context, u *models.ChatMemberUpdated) {
	chatID := u.Chat.ID
	h.invalidator.Invalidate(chatID, policydomain.SettingsGroupCapabilities)

	before, after := standing(&u.OldChatMember), standing(&u.NewChatMember)
	if !promoted(before, after) {
		slog.Info("Bot standing changed", "chat_id", chatID, "status", after.Status)
		return
	}

	sent, err := h.pending.FlushPending(ctx, chatID)
	if err != nil {
		slog.Error("Failed to flush pending messages", "error", err, "chat_id", chatID)
		return
	}
	slog.Info("Bot promoted", "chat_id", chatID, "flushed", sent)
}

func promoted(before, after *memberdomain.Standing) bool {
	isAdmin := func(s *memberdomain.Standing) bool {
		return s.Status == memberdomain.StatusCreator || s.Status == memberdomain.StatusAdministrator
	}
	if !isAdmin(after) {
		return false
	}
	was, now := before.Capabilities(), after.Capabilities()
	return !isAdmin(before) || (now.Delete && !was.Delete) || (now.Restrict && !was.Restrict)
}
