package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	escalation "github.com/reshetovitsme/chat-guard/internal/modules/escalation/service"
	"github.com/reshetovitsme/chat-guard/internal/modules/firewall/domain"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	msgservice "github.com/reshetovitsme/chat-guard/internal/modules/message/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatID = int64(-100)

var noon = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeRepo struct {
	rules []*domain.Rule
	err   error
	loads atomic.Int32
}

func (r *fakeRepo) ListRules(context.Context, int64) ([]*domain.Rule, error) {
	r.loads.Add(1)
	return r.rules, r.err
}

func (r *fakeRepo) GetRule(context.Context, string) (*domain.Rule, error) { return nil, nil }

func (r *fakeRepo) SaveRule(context.Context, map[string]any) (*domain.Rule, error) { return nil, nil }

func (r *fakeRepo) DeleteRule(context.Context, string) error { return nil }

func newEngine(rules ...*domain.Rule) (*Engine, *fakeRepo) {
	repo := &fakeRepo{rules: rules}
	return New(repo, escalation.New(time.Hour), time.Minute), repo
}

func msg(text string) *msgdomain.Facts {
	return msgservice.Extract(msgdomain.Message{
		ID:     9,
		Date:   noon.Unix(),
		ChatID: chatID,
		Sender: msgdomain.Sender{ID: 7},
		Text:   text,
	})
}

func keywordRule(id string, priority int, keywords ...string) *domain.Rule {
	return &domain.Rule{
		ID:         id,
		Name:       id,
		Scope:      domain.ScopeGroup,
		ChatID:     chatID,
		Enabled:    true,
		Priority:   priority,
		Severity:   1,
		Conditions: []domain.Condition{{Kind: domain.ConditionKindKeyword, Keywords: keywords, Match: domain.MatchAny}},
		Actions:    []domain.RuleAction{{Kind: domain.RuleActionKindWarn}},
	}
}

func kindsOf(actions []action.Action, kind action.ActionKind) []action.Action {
	var out []action.Action
	for _, a := range actions {
		if a.Kind() == kind {
			out = append(out, a)
		}
	}
	return out
}

func TestAirdropScenario(t *testing.T) {
	assert := assert.New(t)
	engine, _ := newEngine(keywordRule("airdrop", 10, "airdrop"))

	res := engine.Evaluate(context.Background(), Input{Facts: msg("free airdrop now")})

	assert.Len(kindsOf(res.Actions, action.ActionKindWarnMember), 1)
	assert.Len(kindsOf(res.Actions, action.ActionKindRecordRuleAudit), 1)
	assert.Equal([]Match{{RuleID: "airdrop"}}, res.Matches)

	warn := kindsOf(res.Actions, action.ActionKindWarnMember)[0].(action.WarnMember)
	assert.Equal(int64(7), warn.UserID)
	assert.Equal(action.SeverityMedium, warn.Severity)
}

func TestRulesRunInPriorityOrderAndUnion(t *testing.T) {
	first := keywordRule("b-first", 1, "x")
	first.Actions = []domain.RuleAction{{Kind: domain.RuleActionKindDeleteMessage}}
	second := keywordRule("a-second", 5, "x")
	second.Actions = []domain.RuleAction{{Kind: domain.RuleActionKindKick}}
	disabled := keywordRule("disabled", 0, "x")
	disabled.Enabled = false
	otherChat := keywordRule("other", 0, "x")
	otherChat.ChatID = -999
	global := keywordRule("global", 3, "x")
	global.Scope = domain.ScopeGlobal
	global.ChatID = 0
	global.Actions = []domain.RuleAction{{Kind: domain.RuleActionKindLog}}

	engine, _ := newEngine(second, disabled, global, otherChat, first)
	res := engine.Evaluate(context.Background(), Input{Facts: msg("x marks")})

	assert.Equal(t, []action.ActionKind{
		action.ActionKindDeleteMessage, action.ActionKindRecordRuleAudit,
		action.ActionKindLog, action.ActionKindRecordRuleAudit,
		action.ActionKindKickMember, action.ActionKindRecordRuleAudit,
	}, action.Kinds(res.Actions))

	res = engine.Evaluate(context.Background(), Input{Facts: msg("x marks"), FirstMatchOnly: true})
	assert.Equal(t, []Match{{RuleID: "b-first"}}, res.Matches)
}

func TestMatchAllAndAny(t *testing.T) {
	rule := keywordRule("r", 1, "crypto")
	rule.Conditions = append(rule.Conditions, domain.Condition{Kind: domain.ConditionKindLinkDomain, Domains: []string{"scam.io"}})

	engine, _ := newEngine(rule)
	assert.NotEmpty(t, engine.Evaluate(context.Background(), Input{Facts: msg("crypto talk")}).Matches)

	rule.MatchAll = true
	engine, _ = newEngine(rule)
	assert.Empty(t, engine.Evaluate(context.Background(), Input{Facts: msg("crypto talk")}).Matches)
	assert.NotEmpty(t, engine.Evaluate(context.Background(), Input{Facts: msg("crypto at https://scam.io/x")}).Matches)
}

func TestRuleWithoutConditionsNeverMatches(t *testing.T) {
	rule := keywordRule("r", 1)
	rule.Conditions = nil
	engine, _ := newEngine(rule)
	assert.Empty(t, engine.Evaluate(context.Background(), Input{Facts: msg("anything")}).Actions)
}

func TestConditions(t *testing.T) {
	role := func(r msgdomain.Role) func(context.Context) msgdomain.Role {
		return func(context.Context) msgdomain.Role { return r }
	}

	tests := []struct {
		name  string
		cond  domain.Condition
		facts *msgdomain.Facts
		role  func(context.Context) msgdomain.Role
		want  bool
	}{
		{"text contains folds case", domain.Condition{Kind: domain.ConditionKindTextContains, Text: "FREE"}, msg("free stuff"), nil, true},
		{"text contains case sensitive", domain.Condition{Kind: domain.ConditionKindTextContains, Text: "FREE", CaseSensitive: true}, msg("free stuff"), nil, false},
		{"regex with flags", domain.Condition{Kind: domain.ConditionKindRegex, Pattern: `^win \d+`, Flags: "i"}, msg("WIN 100 now"), nil, true},
		{"invalid stored regex never matches", domain.Condition{Kind: domain.ConditionKindRegex, Pattern: `(`}, msg("("), nil, false},
		{"keyword all", domain.Condition{Kind: domain.ConditionKindKeyword, Keywords: []string{"buy", "now"}, Match: domain.MatchAll}, msg("buy it now"), nil, true},
		{"keyword all missing one", domain.Condition{Kind: domain.ConditionKindKeyword, Keywords: []string{"buy", "later"}, Match: domain.MatchAll}, msg("buy it now"), nil, false},
		{"media type", domain.Condition{Kind: domain.ConditionKindMediaType, MediaTypes: []msgdomain.MediaKind{msgdomain.MediaKindSticker}},
			msgservice.Extract(msgdomain.Message{ChatID: chatID, Media: []msgdomain.MediaKind{msgdomain.MediaKindSticker}}), nil, true},
		{"link domain exact", domain.Condition{Kind: domain.ConditionKindLinkDomain, Domains: []string{"spam.io"}}, msg("https://spam.io/a"), nil, true},
		{"link domain subdomain needs toggle", domain.Condition{Kind: domain.ConditionKindLinkDomain, Domains: []string{"spam.io"}}, msg("https://cdn.spam.io/a"), nil, false},
		{"link domain subdomain allowed", domain.Condition{Kind: domain.ConditionKindLinkDomain, Domains: []string{"spam.io"}, AllowSubdomains: true}, msg("https://cdn.spam.io/a"), nil, true},
		{"link domain suffix is not subdomain", domain.Condition{Kind: domain.ConditionKindLinkDomain, Domains: []string{"spam.io"}, AllowSubdomains: true}, msg("https://notspam.io/a"), nil, false},
		{"user role new", domain.Condition{Kind: domain.ConditionKindUserRole, Roles: []msgdomain.Role{msgdomain.RoleNew}}, msg("hi"), role(msgdomain.RoleNew), true},
		{"user role mismatch", domain.Condition{Kind: domain.ConditionKindUserRole, Roles: []msgdomain.Role{msgdomain.RoleNew}}, msg("hi"), role(msgdomain.RoleMember), false},
		{"unresolved role never matches", domain.Condition{Kind: domain.ConditionKindUserRole, Roles: []msgdomain.Role{msgdomain.RoleNew}}, msg("hi"), role(msgdomain.RoleUnknown), false},
		{"no resolver never matches", domain.Condition{Kind: domain.ConditionKindUserRole, Roles: []msgdomain.Role{msgdomain.RoleNew}}, msg("hi"), nil, false},
		{"time range wraps midnight", domain.Condition{Kind: domain.ConditionKindTimeRange, StartHour: 22, EndHour: 6}, msg("hi"), nil, false},
		{"time range in timezone", domain.Condition{Kind: domain.ConditionKindTimeRange, StartHour: 20, EndHour: 23, Timezone: "Asia/Tokyo"}, msg("hi"), nil, true},
		{"message length within", domain.Condition{Kind: domain.ConditionKindMessageLength, MinLength: 2, MaxLength: 5}, msg("héllo"), nil, true},
		{"message length too long", domain.Condition{Kind: domain.ConditionKindMessageLength, MaxLength: 3}, msg("hello"), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := keywordRule("r", 1)
			rule.Conditions = []domain.Condition{tt.cond}
			engine, _ := newEngine(rule)

			res := engine.Evaluate(context.Background(), Input{Facts: tt.facts, Role: tt.role})
			assert.Equal(t, tt.want, len(res.Matches) == 1)
		})
	}
}

func TestRoleResolvedOnlyWhenNeeded(t *testing.T) {
	var calls atomic.Int32
	engine, _ := newEngine(keywordRule("r", 1, "hello"))

	engine.Evaluate(context.Background(), Input{
		Facts: msg("hello"),
		Role: func(context.Context) msgdomain.Role {
			calls.Add(1)
			return msgdomain.RoleMember
		},
	})
	assert.Equal(t, int32(0), calls.Load())
}

func TestEscalationAppendsStepActions(t *testing.T) {
	assert := assert.New(t)
	rule := keywordRule("spam", 1, "spam")
	rule.Escalation = &domain.Escalation{Steps: []domain.EscalationStep{
		{Threshold: 3, WindowSeconds: 600, Actions: []domain.RuleAction{{Kind: domain.RuleActionKindMute, DurationSeconds: 3600}}},
	}}
	engine, _ := newEngine(rule)

	var results []Result
	for i := 0; i < 3; i++ {
		f := msg("spam spam")
		f.SentAt = noon.Add(time.Duration(i) * time.Minute)
		results = append(results, engine.Evaluate(context.Background(), Input{Facts: f}))
	}

	assert.Empty(kindsOf(results[0].Actions, action.ActionKindRestrictMember))
	assert.Empty(kindsOf(results[1].Actions, action.ActionKindRestrictMember))

	mutes := kindsOf(results[2].Actions, action.ActionKindRestrictMember)
	require.Len(t, mutes, 1)
	assert.Equal(3600, mutes[0].(action.RestrictMember).DurationSeconds)
	assert.Len(kindsOf(results[2].Actions, action.ActionKindWarnMember), 1, "direct actions are kept")
	assert.Equal([]int{0}, results[2].Matches[0].Escalated)

	audit := kindsOf(results[2].Actions, action.ActionKindRecordRuleAudit)[0].(action.RecordRuleAudit)
	assert.Equal("warn_member,restrict_member", audit.ActionSummary)
	assert.Equal(3, audit.Payload["violations"])
}

func TestBanUntilIsDerivedFromMessageTime(t *testing.T) {
	rule := keywordRule("r", 1, "x")
	rule.Actions = []domain.RuleAction{{Kind: domain.RuleActionKindBan, DurationSeconds: 60}, {Kind: domain.RuleActionKindBan}}
	engine, _ := newEngine(rule)

	bans := kindsOf(engine.Evaluate(context.Background(), Input{Facts: msg("x")}).Actions, action.ActionKindBanMember)
	require.Len(t, bans, 2)
	assert.Equal(t, noon.Add(time.Minute).Unix(), bans[0].(action.BanMember).UntilDate)
	assert.Zero(t, bans[1].(action.BanMember).UntilDate)
}

func TestRuleCacheAndInvalidation(t *testing.T) {
	assert := assert.New(t)
	engine, repo := newEngine(keywordRule("r", 1, "x"))
	ctx := context.Background()

	engine.Evaluate(ctx, Input{Facts: msg("x")})
	engine.Evaluate(ctx, Input{Facts: msg("x")})
	assert.Equal(int32(1), repo.loads.Load())

	repo.rules = nil
	engine.InvalidateRules(chatID)
	assert.Empty(engine.Evaluate(ctx, Input{Facts: msg("x")}).Actions)
	assert.Equal(int32(2), repo.loads.Load())

	engine.InvalidateRules(0)
	engine.Evaluate(ctx, Input{Facts: msg("x")})
	assert.Equal(int32(3), repo.loads.Load())
}

func TestStoreFailureSkipsEvaluation(t *testing.T) {
	engine, repo := newEngine(keywordRule("r", 1, "x"))
	repo.err = errors.New("store down")

	res := engine.Evaluate(context.Background(), Input{Facts: msg("x")})
	assert.Empty(t, res.Actions)

	engine.Evaluate(context.Background(), Input{Facts: msg("x")})
	assert.Equal(t, int32(1), repo.loads.Load(), "failure is cached for the TTL")
}
