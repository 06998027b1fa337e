// Package service turns action intents into platform calls.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/executor/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/executor/repository"
	memberdomain "github.com/reshetovitsme/chat-guard/internal/modules/member/domain"
	policydomain "github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	policyrepo "github.com/reshetovitsme/chat-guard/internal/modules/policy/repository"
	sharederrors "github.com/reshetovitsme/chat-guard/internal/shared/errors"
	"github.com/samber/lo"
)

// Platform is the chat platform client. Errors are classified with the
// shared sentinels: ErrPermissionDenied, ErrTopicClosed, ErrMessageNotFound
// and *RateLimitError.
type Platform interface {
	GetStanding(ctx context.Context, chatID, userID int64) (*memberdomain.Standing, error)
	BotID() int64
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	// RestrictMember mutes a member; a zero until is forever.
	RestrictMember(ctx context.Context, chatID, userID int64, until time.Time) error
	KickMember(ctx context.Context, chatID, userID int64) error
	// BanMember bans a member; a zero until is forever.
	BanMember(ctx context.Context, chatID, userID int64, until time.Time) error
	SendMessage(ctx context.Context, chatID int64, msg domain.Outgoing) (int, error)
}

// AuditSink persists record_moderation and record_rule_audit intents
type AuditSink interface {
	Record(ctx context.Context, chatID int64, a action.Action) error
}

// CapabilityInvalidator voids cached capabilities after a permission error
type CapabilityInvalidator interface {
	Invalidate(chatID int64, groups ...policydomain.SettingsGroup)
}

// Options wires the optional collaborators. Nil members are skipped.
type Options struct {
	GroupState  policyrepo.GroupState
	Pending     repository.PendingStore
	Audit       AuditSink
	Invalidator CapabilityInvalidator
	// RetryBase is the first backoff step of background deletions.
	RetryBase time.Duration
}

var (
	errMissingCapability = errors.New("missing capability")
	errRateLimited       = errors.New("rate limited in this context")
)

// Executor performs action intents against the platform
type Executor struct {
	platform Platform
	opts     Options

	now       func() time.Time
	afterFunc func(time.Duration, func())

	background context.Context
	cancel     context.CancelFunc
}

func New(platform Platform, opts Options) *Executor {
	if opts.RetryBase <= 0 {
		opts.RetryBase = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		platform: platform,
		opts:     opts,
		now:      time.Now,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		background: ctx,
		cancel:     cancel,
	}
}

// Close abandons scheduled auto-deletions.
func (e *Executor) Close() {
	e.cancel()
}

// Execute performs actions in order. Identical deletions run once; after a
// rate limit response the remaining platform calls of the context are
// skipped. The executor never sleeps; the retry-after hint is reported.
func (e *Executor) Execute(ctx context.Context, pc *domain.ProcessingContext, actions []action.Action) domain.Report {
	var rep domain.Report
	deleted := map[int]bool{}

	for _, a := range actions {
		if a == nil {
			continue
		}

		switch a := a.(type) {
		case action.DeleteMessage:
			if deleted[a.MessageID] {
				e.skip(&rep, a.Kind(), domain.SkipDuplicate)
				continue
			}
			deleted[a.MessageID] = true
			e.deleteMessage(ctx, pc, &rep, a)
		case action.WarnMember:
			e.warn(ctx, pc, &rep, a)
		case action.RestrictMember:
			e.restrict(ctx, pc, &rep, a)
		case action.KickMember:
			e.kick(ctx, pc, &rep, a)
		case action.BanMember:
			e.ban(ctx, pc, &rep, a)
		case action.SendMessage:
			e.sendMessage(ctx, pc, &rep, a)
		case action.RecordModeration:
			e.record(ctx, pc, &rep, a)
		case action.RecordRuleAudit:
			e.record(ctx, pc, &rep, a)
		case action.Log:
			e.log(ctx, pc, &rep, a)
		case action.Noop:
		default:
			e.fail(&rep, a.Kind(), fmt.Errorf("unhandled action %T", a))
		}
	}

	if _, retryAfter, ok := pc.RateLimited(); ok {
		rep.RateLimited = true
		rep.RetryAfter = retryAfter
	}
	return rep
}

func (e *Executor) deleteMessage(ctx context.Context, pc *domain.ProcessingContext, rep *domain.Report, a action.DeleteMessage) {
	_ = e.call(ctx, pc, rep, a.Kind(), policydomain.CapabilityDelete, func() error {
		err := e.platform.DeleteMessage(ctx, pc.ChatID, a.MessageID)
		if errors.Is(err, sharederrors.ErrMessageNotFound) {
			return nil
		}
		return err
	})
}

func (e *Executor) restrict(ctx context.Context, pc *domain.ProcessingContext, rep *domain.Report, a action.RestrictMember) {
	var until time.Time
	if a.DurationSeconds > 0 {
		until = e.now().Add(time.Duration(a.DurationSeconds) * time.Second)
	}
	_ = e.call(ctx, pc, rep, a.Kind(), policydomain.CapabilityRestrict, func() error {
		return e.platform.RestrictMember(ctx, pc.ChatID, a.UserID, until)
	})
}

func (e *Executor) kick(ctx context.Context, pc *domain.ProcessingContext, rep *domain.Report, a action.KickMember) {
	_ = e.call(ctx, pc, rep, a.Kind(), policydomain.CapabilityRestrict, func() error {
		return e.platform.KickMember(ctx, pc.ChatID, a.UserID)
	})
}

func (e *Executor) ban(ctx context.Context, pc *domain.ProcessingContext, rep *domain.Report, a action.BanMember) {
	var until time.Time
	if a.UntilDate > 0 {
		until = time.Unix(a.UntilDate, 0)
	}
	_ = e.call(ctx, pc, rep, a.Kind(), policydomain.CapabilityRestrict, func() error {
		return e.platform.BanMember(ctx, pc.ChatID, a.UserID, until)
	})
}

func (e *Executor) record(ctx context.Context, pc *domain.ProcessingContext, rep *domain.Report, a action.Action) {
	if e.opts.Audit == nil {
		e.done(rep, a.Kind())
		return
	}
	if err := e.opts.Audit.Record(ctx, pc.ChatID, a); err != nil {
		slog.Warn("Failed to record audit entry", "chat_id", pc.ChatID, "kind", a.Kind(), "error", err)
		e.fail(rep, a.Kind(), err)
		return
	}
	e.done(rep, a.Kind())
}

func (e *Executor) log(ctx context.Context, pc *domain.ProcessingContext, rep *domain.Report, a action.Log) {
	args := []any{"chat_id", pc.ChatID}
	keys := lo.Keys(a.Details)
	slices.Sort(keys)
	for _, k := range keys {
		args = append(args, k, a.Details[k])
	}
	slog.Log(ctx, a.Level.SlogLevel(), a.Message, args...)
	e.done(rep, a.Kind())
}

// call runs one platform call under the capability and rate limit rules of
// the context and classifies its error.
func (e *Executor) call(ctx context.Context, pc *domain.ProcessingContext, rep *domain.Report, kind action.ActionKind, capability policydomain.Capability, fn func() error) error {
	if e.rateLimited(pc, rep, kind) {
		return errRateLimited
	}

	if !e.ensure(ctx, pc, capability) {
		if pc.Capabilities.FirstSkip(capability) {
			rep.Skipped = append(rep.Skipped, domain.Skip{Kind: kind, Reason: domain.SkipMissingCapability})
			slog.Info("Skipping action, bot lacks capability", "chat_id", pc.ChatID, "kind", kind, "capability", capability)
		}
		skipped.WithLabelValues(domain.SkipMissingCapability).Inc()
		return errMissingCapability
	}

	// the capability lookup itself may have been rate limited
	if e.rateLimited(pc, rep, kind) {
		return errRateLimited
	}

	err := fn()
	switch {
	case err == nil:
		e.done(rep, kind)
		return nil
	case e.handleRateLimit(pc, err):
	case errors.Is(err, sharederrors.ErrPermissionDenied):
		pc.Capabilities.MarkMissing(capability)
		e.flagRestricted(ctx, pc.ChatID)
	default:
		slog.Warn("Platform call failed", "chat_id", pc.ChatID, "kind", kind, "error", err)
	}
	e.fail(rep, kind, err)
	return err
}

func (e *Executor) rateLimited(pc *domain.ProcessingContext, rep *domain.Report, kind action.ActionKind) bool {
	if _, _, limited := pc.RateLimited(); !limited {
		return false
	}
	e.skip(rep, kind, domain.SkipRateLimited)
	return true
}

// ensure reports whether the bot may hold capability, resolving the context's
// capabilities with a live lookup on first use. A failed lookup lets the call
// proceed; the call itself then reveals missing rights.
func (e *Executor) ensure(ctx context.Context, pc *domain.ProcessingContext, capability policydomain.Capability) bool {
	if pc.Capabilities.Missing(capability) {
		return false
	}
	if !pc.Capabilities.Resolved() {
		standing, err := e.platform.GetStanding(ctx, pc.ChatID, e.platform.BotID())
		if err != nil {
			e.handleRateLimit(pc, err)
			slog.Debug("Capability lookup failed", "chat_id", pc.ChatID, "error", err)
			return true
		}
		pc.Capabilities.Resolve(standing.Capabilities())
	}
	return !pc.Capabilities.Missing(capability)
}

func (e *Executor) handleRateLimit(pc *domain.ProcessingContext, err error) bool {
	rl, ok := sharederrors.AsRateLimit(err)
	if !ok {
		return false
	}
	pc.MarkRateLimited(e.now(), rl.RetryAfter)
	slog.Warn("Rate limited by platform", "chat_id", pc.ChatID, "retry_after", rl.RetryAfter)
	return true
}

func (e *Executor) flagRestricted(ctx context.Context, chatID int64) {
	if e.opts.Invalidator != nil {
		e.opts.Invalidator.Invalidate(chatID, policydomain.SettingsGroupCapabilities)
	}
	if e.opts.GroupState == nil {
		return
	}
	if err := e.opts.GroupState.SetAdminRestricted(ctx, chatID, true); err != nil {
		slog.Warn("Failed to flag chat as admin restricted", "chat_id", chatID, "error", err)
	}
}

func (e *Executor) done(rep *domain.Report, kind action.ActionKind) {
	rep.Executed = append(rep.Executed, kind)
	executed.WithLabelValues(kind.String()).Inc()
}

func (e *Executor) skip(rep *domain.Report, kind action.ActionKind, reason string) {
	rep.Skipped = append(rep.Skipped, domain.Skip{Kind: kind, Reason: reason})
	skipped.WithLabelValues(reason).Inc()
}

func (e *Executor) fail(rep *domain.Report, kind action.ActionKind, err error) {
	rep.Failed = append(rep.Failed, domain.Failure{Kind: kind, Err: err})
	failed.WithLabelValues(kind.String()).Inc()
}
