package service

import (
	"context"
	"testing"
	"time"

	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	msgservice "github.com/reshetovitsme/chat-guard/internal/modules/message/service"
	"github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	"github.com/reshetovitsme/chat-guard/internal/shared/window"
	"github.com/stretchr/testify/assert"
)

var noon = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func facts(text string, at time.Time) *msgdomain.Facts {
	return msgservice.Extract(msgdomain.Message{
		ID:     42,
		Date:   at.Unix(),
		ChatID: -100,
		Sender: msgdomain.Sender{ID: 7},
		Text:   text,
	})
}

func enabled(keys ...domain.BanRuleKey) map[domain.BanRuleKey]domain.BanRuleSetting {
	rules := make(map[domain.BanRuleKey]domain.BanRuleSetting, len(keys))
	for _, k := range keys {
		rules[k] = domain.BanRuleSetting{Enabled: true, Schedule: domain.Schedule{Always: true}}
	}
	return rules
}

func evaluate(e *Evaluator, f *msgdomain.Facts, snap *domain.Snapshot) Result {
	return e.Evaluate(context.Background(), Input{Facts: f, Snapshot: snap})
}

func TestBlacklistedLinkScenario(t *testing.T) {
	assert := assert.New(t)
	e := New(window.NewMemoryStore())
	snap := &domain.Snapshot{BanRules: &domain.BanRules{
		Rules:     enabled(domain.BanLinks),
		Blacklist: []string{"spam.example"},
	}}

	res := evaluate(e, facts("visit http://spam.example/x", noon), snap)

	assert.Equal([]action.ActionKind{
		action.ActionKindDeleteMessage,
		action.ActionKindLog,
		action.ActionKindWarnMember,
	}, action.Kinds(res.Actions))
	assert.Equal([]domain.BanRuleKey{domain.BanLinks}, res.Violations)
	assert.True(res.StopsFirewall())

	warn := res.Actions[2].(action.WarnMember)
	assert.Equal(int64(7), warn.UserID)
	assert.Equal(action.SeverityMedium, warn.Severity)
	assert.Contains(warn.Reason, string(domain.BanLinks))
}

func TestDisabledRuleEmitsNothing(t *testing.T) {
	e := New(window.NewMemoryStore())
	snap := &domain.Snapshot{BanRules: &domain.BanRules{
		Rules:     map[domain.BanRuleKey]domain.BanRuleSetting{domain.BanLinks: {Enabled: false}},
		Blacklist: []string{"spam.example"},
	}}

	for _, text := range []string{"visit http://spam.example/x", "hello", "www.other.org"} {
		res := evaluate(e, facts(text, noon), snap)
		assert.Empty(t, res.Actions, text)
	}
}

func TestLinkLists(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		blacklist []string
		whitelist []string
		blocked   bool
	}{
		{name: "no lists blocks every link", text: "see http://example.org/a", blocked: true},
		{name: "whitelisted domain", text: "see https://docs.example.org", whitelist: []string{"EXAMPLE.org"}, blocked: false},
		{name: "blacklist wins over whitelist", text: "see https://spam.example", blacklist: []string{"spam.example"}, whitelist: []string{"spam.example"}, blocked: true},
		{name: "one of two links not whitelisted", text: "https://ok.org and https://bad.net", whitelist: []string{"ok.org"}, blocked: true},
		{name: "no link", text: "plain words", blocked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(window.NewMemoryStore())
			snap := &domain.Snapshot{BanRules: &domain.BanRules{
				Rules:     enabled(domain.BanLinks),
				Blacklist: tt.blacklist,
				Whitelist: tt.whitelist,
			}}
			res := evaluate(e, facts(tt.text, noon), snap)
			assert.Equal(t, tt.blocked, len(res.Violations) == 1)
		})
	}
}

func TestTextPattern(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		token   string
		matches bool
	}{
		{name: "literal case-insensitive", text: "Buy CHEAP pills", token: "cheap", matches: true},
		{name: "literal with regex metacharacters", text: "price is $5.00 (today)", token: "$5.00 (", matches: true},
		{name: "regex", text: "earn 5000 usd", token: `/earn \d+ usd/`, matches: true},
		{name: "regex is case-insensitive", text: "EARN 10 USD", token: `/earn \d+ usd/`, matches: true},
		{name: "invalid regex never matches", text: "anything (", token: "/(/", matches: false},
		{name: "no match", text: "hello", token: "bye", matches: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(window.NewMemoryStore())
			snap := &domain.Snapshot{BanRules: &domain.BanRules{
				Rules:     enabled(domain.BanTextPattern),
				Blacklist: []string{tt.token},
			}}
			res := evaluate(e, facts(tt.text, noon), snap)
			assert.Equal(t, tt.matches, len(res.Actions) > 0)
		})
	}
}

func TestScheduledRule(t *testing.T) {
	e := New(window.NewMemoryStore())
	snap := &domain.Snapshot{BanRules: &domain.BanRules{
		Rules: map[domain.BanRuleKey]domain.BanRuleSetting{
			domain.BanHashtag: {Enabled: true, Schedule: domain.Schedule{Start: "22:00", End: "06:00"}},
		},
	}}

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		at     time.Time
		active bool
	}{
		{day.Add(23*time.Hour + 30*time.Minute), true},
		{day.Add(5*time.Hour + 30*time.Minute), true},
		{day.Add(12 * time.Hour), false},
	} {
		res := evaluate(e, facts("#promo", tc.at), snap)
		assert.Equal(t, tc.active, len(res.Violations) > 0, tc.at.String())
	}
}

func TestMultipleViolationsShareOneWarning(t *testing.T) {
	assert := assert.New(t)
	e := New(window.NewMemoryStore())
	snap := &domain.Snapshot{BanRules: &domain.BanRules{
		Rules: enabled(domain.BanHashtag, domain.BanUsername, domain.BanCyrillic),
	}}

	res := evaluate(e, facts("#sale @shop привет", noon), snap)

	assert.Len(res.Actions, 3)
	assert.ElementsMatch([]domain.BanRuleKey{domain.BanHashtag, domain.BanUsername, domain.BanCyrillic}, res.Violations)
	warn := res.Actions[2].(action.WarnMember)
	for _, k := range res.Violations {
		assert.Contains(warn.Reason, string(k))
	}
}

func TestSilence(t *testing.T) {
	snap := &domain.Snapshot{
		Silence: &domain.SilenceSettings{Window1: domain.SilenceWindow{Enabled: true, Start: "11:00", End: "13:00"}},
		BanRules: &domain.BanRules{
			Rules: enabled(domain.BanHashtag),
		},
	}

	tests := []struct {
		name string
		role msgdomain.Role
		want []action.ActionKind
	}{
		{name: "member is silenced", role: msgdomain.RoleMember, want: []action.ActionKind{action.ActionKindDeleteMessage}},
		{name: "unknown is silenced", role: msgdomain.RoleUnknown, want: []action.ActionKind{action.ActionKindDeleteMessage}},
		{name: "admin passes to the catalog", role: msgdomain.RoleAdmin, want: nil},
		{name: "owner passes to the catalog", role: msgdomain.RoleOwner, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(window.NewMemoryStore())
			res := e.Evaluate(context.Background(), Input{
				Facts:    facts("quiet please", noon),
				Snapshot: snap,
				Role:     func(context.Context) msgdomain.Role { return tt.role },
			})
			if tt.want == nil {
				assert.Empty(t, res.Actions)
				assert.False(t, res.Silenced)
				return
			}
			assert.Equal(t, tt.want, action.Kinds(res.Actions))
			assert.True(t, res.Silenced)
		})
	}
}

func TestEmergencyLockDoesNotResolveRoleOutsideLock(t *testing.T) {
	e := New(window.NewMemoryStore())
	resolved := false
	res := e.Evaluate(context.Background(), Input{
		Facts:    facts("hi", noon),
		Snapshot: &domain.Snapshot{Silence: &domain.SilenceSettings{}},
		Role: func(context.Context) msgdomain.Role {
			resolved = true
			return msgdomain.RoleMember
		},
	})
	assert.Empty(t, res.Actions)
	assert.False(t, resolved)

	res = e.Evaluate(context.Background(), Input{
		Facts:    facts("hi", noon),
		Snapshot: &domain.Snapshot{Silence: &domain.SilenceSettings{EmergencyLock: domain.EmergencyLock{Enabled: true}}},
	})
	assert.True(t, res.Silenced)
}

func TestRateLimit(t *testing.T) {
	e := New(window.NewMemoryStore())
	snap := &domain.Snapshot{Limits: &domain.LimitSettings{MessagesPerWindow: 5, WindowMinutes: 1}}

	for i := 1; i <= 5; i++ {
		res := evaluate(e, facts("message", noon.Add(time.Duration(i)*5*time.Second)), snap)
		assert.Empty(t, res.Actions, "message %d", i)
	}

	res := evaluate(e, facts("message", noon.Add(30*time.Second)), snap)
	assert.Equal(t, []string{ReasonRateLimit}, res.Limits)
	assert.Equal(t, ReasonRateLimit, res.Actions[0].(action.DeleteMessage).Reason)
}

func TestDuplicateDetection(t *testing.T) {
	e := New(window.NewMemoryStore())
	snap := &domain.Snapshot{Limits: &domain.LimitSettings{DuplicateMessages: 2, DuplicateWindowMinutes: 10}}

	assert.Empty(t, evaluate(e, facts("Same text", noon), snap).Actions)
	assert.Empty(t, evaluate(e, facts("same  TEXT", noon.Add(time.Minute)), snap).Actions)

	res := evaluate(e, facts("same text", noon.Add(2*time.Minute)), snap)
	assert.Equal(t, []string{ReasonDuplicate}, res.Limits)

	// outside the window the count starts over
	res = evaluate(e, facts("same text", noon.Add(time.Hour)), snap)
	assert.Empty(t, res.Actions)
}

func TestWordLimitsCanBothContribute(t *testing.T) {
	e := New(window.NewMemoryStore())
	snap := &domain.Snapshot{Limits: &domain.LimitSettings{MinWordsPerMessage: 3, MaxWordsPerMessage: 5, MessagesPerWindow: 1, WindowMinutes: 1}}

	assert.Empty(t, evaluate(e, facts("three words here", noon), snap).Actions)

	res := evaluate(e, facts("short", noon.Add(time.Second)), snap)
	assert.Equal(t, []string{ReasonMinWords, ReasonRateLimit}, res.Limits)
	assert.Len(t, res.Actions, 2)
}

func TestBanViolationSkipsLimits(t *testing.T) {
	e := New(window.NewMemoryStore())
	snap := &domain.Snapshot{
		BanRules: &domain.BanRules{Rules: enabled(domain.BanHashtag)},
		Limits:   &domain.LimitSettings{MessagesPerWindow: 1, WindowMinutes: 1},
	}

	res := evaluate(e, facts("#a", noon), snap)
	assert.Len(t, res.Violations, 1)
	assert.Empty(t, res.Limits)

	// the banned message was not counted
	assert.Empty(t, evaluate(e, facts("fine", noon.Add(time.Second)), snap).Actions)
}

func TestEvaluationIsIdempotent(t *testing.T) {
	e := New(window.NewMemoryStore())
	snap := &domain.Snapshot{BanRules: &domain.BanRules{
		Rules:     enabled(domain.BanLinks, domain.BanEmoji),
		Whitelist: []string{"good.org"},
	}}
	f := facts("look 🔥 https://bad.net", noon)

	first := evaluate(e, f, snap)
	second := evaluate(e, f, snap)
	assert.Equal(t, first, second)
}

func TestUnavailableSnapshot(t *testing.T) {
	e := New(window.NewMemoryStore())
	assert.Empty(t, evaluate(e, facts("#x http://spam.example", noon), &domain.Snapshot{}).Actions)
	assert.Empty(t, evaluate(e, facts("#x", noon), nil).Actions)
}

func TestCatalogHasACheckPerKey(t *testing.T) {
	for _, key := range domain.Catalog {
		assert.Contains(t, checks, key)
	}
	assert.Len(t, checks, len(domain.Catalog))
}
