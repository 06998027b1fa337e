// Package service implements the firewall rule engine.
package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	escalation "github.com/reshetovitsme/chat-guard/internal/modules/escalation/service"
	"github.com/reshetovitsme/chat-guard/internal/modules/firewall/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/firewall/repository"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	"golang.org/x/sync/singleflight"
)

// Input is one evaluation request.
type Input struct {
	Facts *msgdomain.Facts
	// Role resolves the sender's standing lazily, only user_role conditions
	// consult it. Nil means unknown.
	Role func(ctx context.Context) msgdomain.Role
	// FirstMatchOnly stops at the first matching rule.
	FirstMatchOnly bool
}

// Match is a rule that matched, with the escalation steps it fired.
type Match struct {
	RuleID    string
	Escalated []int
}

// Result of a firewall evaluation. Actions keep rule priority order.
type Result struct {
	Actions []action.Action
	Matches []Match
}

// Engine evaluates the enabled rules of a chat in priority order
type Engine struct {
	repo    repository.Repository
	tracker *escalation.Tracker

	chats    *expirable.LRU[int64, []*compiledRule]
	compiled *expirable.LRU[string, *compiledRule]
	flight   singleflight.Group
}

// New creates a rule engine. Rule lists are cached per chat for ttl.
func New(repo repository.Repository, tracker *escalation.Tracker, ttl time.Duration) *Engine {
	return &Engine{
		repo:     repo,
		tracker:  tracker,
		chats:    expirable.NewLRU[int64, []*compiledRule](10_000, nil, ttl),
		compiled: expirable.NewLRU[string, *compiledRule](50_000, nil, 4*ttl),
	}
}

// InvalidateRules voids the cached rules of chatID. Zero voids every chat,
// which a global rule edit requires.
func (e *Engine) InvalidateRules(chatID int64) {
	if chatID == 0 {
		e.chats.Purge()
		return
	}
	e.chats.Remove(chatID)
}

// Evaluate runs every enabled rule of the chat against the message and unions
// the actions of the matching ones.
func (e *Engine) Evaluate(ctx context.Context, in Input) Result {
	var res Result
	if in.Facts == nil {
		return res
	}

	ec := evalContext{ctx: ctx, facts: in.Facts, role: in.Role}
	for _, rule := range e.rules(ctx, in.Facts.ChatID) {
		if !rule.matches(ec) {
			continue
		}
		ruleMatches.WithLabelValues(rule.Scope.String()).Inc()

		emitted := toActions(rule.Rule, in.Facts, rule.Actions)
		match := Match{RuleID: rule.ID}
		count := 0

		if rule.Escalation != nil {
			out, err := e.tracker.Record(ctx, rule.ID, in.Facts.SenderID, in.Facts.SentAt, rule.Escalation)
			if err != nil {
				slog.Warn("Failed to record escalation", "rule_id", rule.ID, "user_id", in.Facts.SenderID, "error", err)
			}
			count = out.Count
			for _, i := range out.Fired {
				emitted = append(emitted, toActions(rule.Rule, in.Facts, rule.Escalation.Steps[i].Actions)...)
			}
			match.Escalated = out.Fired
			escalations.Add(float64(len(out.Fired)))
		}

		res.Actions = append(res.Actions, emitted...)
		res.Actions = append(res.Actions, auditAction(rule.Rule, in.Facts, emitted, match.Escalated, count))
		res.Matches = append(res.Matches, match)

		if in.FirstMatchOnly {
			break
		}
	}
	return res
}

// rules returns the enabled rules in scope for chatID, ascending priority.
// A failed load yields no rules for the cache TTL.
func (e *Engine) rules(ctx context.Context, chatID int64) []*compiledRule {
	if rules, ok := e.chats.Get(chatID); ok {
		return rules
	}

	v, _, _ := e.flight.Do(fmt.Sprintf("%d", chatID), func() (any, error) {
		if rules, ok := e.chats.Get(chatID); ok {
			return rules, nil
		}

		stored, err := e.repo.ListRules(ctx, chatID)
		if err != nil {
			ruleLoadErrors.Inc()
			slog.Warn("Failed to load firewall rules", "chat_id", chatID, "error", err)
			stored = nil
		}

		rules := make([]*compiledRule, 0, len(stored))
		for _, r := range stored {
			if !r.Enabled || !r.AppliesTo(chatID) {
				continue
			}
			rules = append(rules, e.compile(r))
		}
		slices.SortStableFunc(rules, func(a, b *compiledRule) int {
			return cmp.Or(cmp.Compare(a.Priority, b.Priority), cmp.Compare(a.ID, b.ID))
		})

		e.chats.Add(chatID, rules)
		return rules, nil
	})
	return v.([]*compiledRule)
}

func (e *Engine) compile(r *domain.Rule) *compiledRule {
	key := r.ID + "@" + r.UpdatedAt.UTC().Format(time.RFC3339Nano)
	if c, ok := e.compiled.Get(key); ok {
		return c
	}
	c := compile(r)
	e.compiled.Add(key, c)
	return c
}
