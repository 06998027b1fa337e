// Package service wires the moderation pipeline: facts, policy, ban guard,
// firewall and execution for one inbound message at a time.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	banguard "github.com/reshetovitsme/chat-guard/internal/modules/banguard/service"
	execdomain "github.com/reshetovitsme/chat-guard/internal/modules/executor/domain"
	firewall "github.com/reshetovitsme/chat-guard/internal/modules/firewall/service"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	msgservice "github.com/reshetovitsme/chat-guard/internal/modules/message/service"
	policydomain "github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// BanGuardRuleID names ban guard enforcement in moderation records.
const BanGuardRuleID = "banguard"

// PolicySource serves settings snapshots per chat
type PolicySource interface {
	Snapshot(ctx context.Context, chatID int64) (*policydomain.Snapshot, bool)
}

// RoleResolver classifies a sender's standing in a chat
type RoleResolver interface {
	ResolveRole(ctx context.Context, chatID, userID int64, at time.Time) msgdomain.Role
}

// Executor performs the produced intents
type Executor interface {
	Execute(ctx context.Context, pc *execdomain.ProcessingContext, actions []action.Action) execdomain.Report
}

// Options tunes the pipeline
type Options struct {
	// FirstMatchOnly stops the firewall at the first matching rule.
	FirstMatchOnly bool
}

// Outcome describes what the pipeline decided and did for one message
type Outcome struct {
	// Managed is false when no policy applies to the chat.
	Managed  bool
	Facts    *msgdomain.Facts
	BanGuard banguard.Result
	Firewall firewall.Result
	Actions  []action.Action
	Report   execdomain.Report
}

// Service processes inbound messages
type Service struct {
	policy   PolicySource
	roles    RoleResolver
	banGuard *banguard.Evaluator
	firewall *firewall.Engine
	executor Executor
	opts     Options

	// locks serializes chats by shard; chats sharing a shard wait on each other.
	locks [lockShards]sync.Mutex
}

const lockShards = 1024

// New creates the moderation pipeline
func New(policy PolicySource, roles RoleResolver, banGuard *banguard.Evaluator, engine *firewall.Engine, executor Executor, opts Options) *Service {
	return &Service{
		policy:   policy,
		roles:    roles,
		banGuard: banGuard,
		firewall: engine,
		executor: executor,
		opts:     opts,
	}
}

// Process evaluates one message and executes the resulting actions. Messages
// of the same chat are processed one at a time so window counters observe
// them in arrival order.
func (s *Service) Process(ctx context.Context, msg msgdomain.Message) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, oops.With("chat_id", msg.ChatID, "message_id", msg.ID).Wrap(err)
	}

	lock := s.lockFor(msg.ChatID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer func() { processDuration.Observe(time.Since(start).Seconds()) }()

	snap, ok := s.policy.Snapshot(ctx, msg.ChatID)
	if !ok {
		processed.WithLabelValues(outcomeUnmanaged).Inc()
		return &Outcome{}, nil
	}

	out := &Outcome{Managed: true}
	if msg.JoinLeave {
		if snap.General != nil && snap.General.RemoveJoinLeaveMessages {
			out.Actions = []action.Action{action.DeleteMessage{MessageID: msg.ID, Reason: "join/leave"}}
		}
		out.Report = s.execute(ctx, msg, snap, out.Actions)
		processed.WithLabelValues(outcomeJoinLeave).Inc()
		return out, nil
	}

	facts := msgservice.Extract(msg)
	out.Facts = facts
	role := s.roleFunc(msg, facts.SentAt)

	out.BanGuard = s.banGuard.Evaluate(ctx, banguard.Input{Facts: facts, Snapshot: snap, Role: role})
	out.Actions = append(out.Actions, out.BanGuard.Actions...)
	if len(out.BanGuard.Actions) > 0 {
		out.Actions = append(out.Actions, moderationRecord(facts, out.BanGuard))
	}

	if !out.BanGuard.StopsFirewall() {
		out.Firewall = s.firewall.Evaluate(ctx, firewall.Input{Facts: facts, Role: role, FirstMatchOnly: s.opts.FirstMatchOnly})
		out.Actions = append(out.Actions, out.Firewall.Actions...)
	}

	if len(out.Actions) == 0 {
		processed.WithLabelValues(outcomeClean).Inc()
		return out, nil
	}

	out.Report = s.execute(ctx, msg, snap, out.Actions)
	processed.WithLabelValues(outcomeEnforced).Inc()
	if out.Report.RateLimited {
		slog.Warn("Platform rate limited the chat", "chat_id", msg.ChatID, "retry_after", out.Report.RetryAfter)
	}
	return out, nil
}

func (s *Service) lockFor(chatID int64) *sync.Mutex {
	return &s.locks[uint64(chatID)%lockShards]
}

func (s *Service) execute(ctx context.Context, msg msgdomain.Message, snap *policydomain.Snapshot, actions []action.Action) execdomain.Report {
	if len(actions) == 0 {
		return execdomain.Report{}
	}

	pc := execdomain.NewProcessingContext(msg.ChatID, snap.Capabilities)
	pc.ChatIsForum = msg.ChatIsForum
	pc.ThreadID = msg.ThreadID
	pc.MessageID = msg.ID
	pc.SenderID = msg.Sender.ID
	pc.General = snap.General
	return s.executor.Execute(ctx, pc, actions)
}

// roleFunc resolves the sender's role at most once per message and only when
// an evaluator asks for it.
func (s *Service) roleFunc(msg msgdomain.Message, at time.Time) func(context.Context) msgdomain.Role {
	if msg.Sender.Role != "" && msg.Sender.Role != msgdomain.RoleUnknown {
		known := msg.Sender.Role
		return func(context.Context) msgdomain.Role { return known }
	}
	if s.roles == nil {
		return nil
	}

	var (
		once sync.Once
		role msgdomain.Role
	)
	return func(ctx context.Context) msgdomain.Role {
		once.Do(func() {
			role = s.roles.ResolveRole(ctx, msg.ChatID, msg.Sender.ID, at)
		})
		return role
	}
}

func moderationRecord(f *msgdomain.Facts, res banguard.Result) action.RecordModeration {
	reason := "ban rules"
	metadata := map[string]any{"message_id": f.MessageID}
	switch {
	case res.Silenced:
		reason = "silence"
	case len(res.Violations) > 0:
		metadata["rules"] = lo.Map(res.Violations, func(k policydomain.BanRuleKey, _ int) string { return string(k) })
	default:
		reason = "limits"
		metadata["limits"] = res.Limits
	}

	return action.RecordModeration{
		RuleID:   BanGuardRuleID,
		UserID:   f.SenderID,
		Actions:  action.Kinds(res.Actions),
		Reason:   reason,
		Metadata: metadata,
	}
}
