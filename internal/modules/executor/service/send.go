package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"time"

	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/executor/domain"
	policydomain "github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	sharederrors "github.com/reshetovitsme/chat-guard/internal/shared/errors"
	"github.com/sethvargo/go-retry"
)

const (
	parseModeHTML     = "HTML"
	autoDeleteRetries = 3
)

// warn delivers a warning text unless warnings are off or the chat runs in
// silent mode.
func (e *Executor) warn(ctx context.Context, pc *domain.ProcessingContext, rep *domain.Report, a action.WarnMember) {
	if pc.General == nil || !pc.General.WarningEnabled || pc.General.SilentModeEnabled {
		e.skip(rep, a.Kind(), domain.SkipWarningsDisabled)
		return
	}

	out := domain.Outgoing{
		Text:      warningText(a),
		ParseMode: parseModeHTML,
		ThreadID:  e.thread(pc, 0),
	}
	e.send(ctx, pc, rep, a.Kind(), out, pc.General.AutoDeleteAfter(), false)
}

func warningText(a action.WarnMember) string {
	return fmt.Sprintf(`⚠️ <a href="tg://user?id=%d">Warning</a> (%s): %s`, a.UserID, html.EscapeString(a.Severity), html.EscapeString(a.Reason))
}

func (e *Executor) sendMessage(ctx context.Context, pc *domain.ProcessingContext, rep *domain.Report, a action.SendMessage) {
	out := domain.Outgoing{
		Text:             a.Text,
		ParseMode:        a.ParseMode,
		ThreadID:         e.thread(pc, a.ThreadID),
		ReplyToMessageID: a.ReplyToMessageID,
	}
	autoDelete := time.Duration(a.AutoDeleteSeconds) * time.Second
	if autoDelete <= 0 {
		autoDelete = pc.General.AutoDeleteAfter()
	}
	e.send(ctx, pc, rep, a.Kind(), out, autoDelete, a.RescheduleOnPromotion)
}

// thread picks the explicit thread, else the thread of the triggering
// message in forum chats.
func (e *Executor) thread(pc *domain.ProcessingContext, explicit int) int {
	if explicit != 0 {
		return explicit
	}
	if pc.ChatIsForum {
		return pc.ThreadID
	}
	return 0
}

// send delivers out, retrying once without the thread when the topic is
// closed. Sends denied for lack of rights are kept for redelivery when
// reschedule is set.
func (e *Executor) send(ctx context.Context, pc *domain.ProcessingContext, rep *domain.Report, kind action.ActionKind, out domain.Outgoing, autoDelete time.Duration, reschedule bool) {
	var sentID int
	err := e.call(ctx, pc, rep, kind, policydomain.CapabilitySend, func() error {
		id, err := e.platform.SendMessage(ctx, pc.ChatID, out)
		if errors.Is(err, sharederrors.ErrTopicClosed) && out.ThreadID != 0 {
			retried := out
			retried.ThreadID = 0
			id, err = e.platform.SendMessage(ctx, pc.ChatID, retried)
		}
		sentID = id
		return err
	})

	switch {
	case err == nil:
		if autoDelete > 0 && sentID != 0 {
			e.scheduleDelete(pc, sentID, autoDelete)
		}
	case reschedule && (errors.Is(err, errMissingCapability) || errors.Is(err, sharederrors.ErrPermissionDenied)):
		e.reschedule(ctx, pc, rep, out)
	}
}

func (e *Executor) reschedule(ctx context.Context, pc *domain.ProcessingContext, rep *domain.Report, out domain.Outgoing) {
	if e.opts.Pending == nil {
		return
	}
	send := &domain.PendingSend{
		ChatID:           pc.ChatID,
		Text:             out.Text,
		ParseMode:        out.ParseMode,
		ThreadID:         out.ThreadID,
		ReplyToMessageID: out.ReplyToMessageID,
		CreatedAt:        e.now().UTC(),
	}
	if err := e.opts.Pending.SavePending(ctx, send); err != nil {
		slog.Warn("Failed to keep send for promotion", "chat_id", pc.ChatID, "error", err)
		return
	}
	rep.Rescheduled++
}

// scheduleDelete removes a bot message after delay in the background. The
// deletion honors the context's capabilities and backs off on rate limits;
// failures are logged.
func (e *Executor) scheduleDelete(pc *domain.ProcessingContext, messageID int, delay time.Duration) {
	e.afterFunc(delay, func() {
		ctx := e.background
		if ctx.Err() != nil {
			return
		}
		if pc.Capabilities.Missing(policydomain.CapabilityDelete) {
			autoDeletes.WithLabelValues("skipped").Inc()
			return
		}

		backoff := retry.WithMaxRetries(autoDeleteRetries, retry.NewExponential(e.opts.RetryBase))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			err := e.platform.DeleteMessage(ctx, pc.ChatID, messageID)
			switch {
			case err == nil, errors.Is(err, sharederrors.ErrMessageNotFound):
				return nil
			case errors.Is(err, sharederrors.ErrPermissionDenied):
				pc.Capabilities.MarkMissing(policydomain.CapabilityDelete)
				e.flagRestricted(ctx, pc.ChatID)
				return err
			}
			if rl, ok := sharederrors.AsRateLimit(err); ok {
				pc.MarkRateLimited(e.now(), rl.RetryAfter)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(rl.RetryAfter):
				}
			}
			return retry.RetryableError(err)
		})
		if err != nil {
			autoDeletes.WithLabelValues("failed").Inc()
			slog.Warn("Auto-delete failed", "chat_id", pc.ChatID, "message_id", messageID, "error", err)
			return
		}
		autoDeletes.WithLabelValues("deleted").Inc()
	})
}

// FlushPending redelivers the sends kept for chatID after the bot regained
// its rights and clears the admin-restricted flag.
func (e *Executor) FlushPending(ctx context.Context, chatID int64) (int, error) {
	if e.opts.Invalidator != nil {
		e.opts.Invalidator.Invalidate(chatID, policydomain.SettingsGroupCapabilities)
	}
	if e.opts.GroupState != nil {
		if err := e.opts.GroupState.SetAdminRestricted(ctx, chatID, false); err != nil {
			slog.Warn("Failed to clear admin restricted flag", "chat_id", chatID, "error", err)
		}
	}
	if e.opts.Pending == nil {
		return 0, nil
	}

	sends, err := e.opts.Pending.TakePending(ctx, chatID)
	if err != nil {
		return 0, err
	}

	pc := domain.NewProcessingContext(chatID, nil)
	var rep domain.Report
	for _, s := range sends {
		out := domain.Outgoing{
			Text:             s.Text,
			ParseMode:        s.ParseMode,
			ThreadID:         s.ThreadID,
			ReplyToMessageID: s.ReplyToMessageID,
		}
		e.send(ctx, pc, &rep, action.ActionKindSendMessage, out, 0, true)
	}
	return len(rep.Executed), nil
}
