package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	banguard "github.com/reshetovitsme/chat-guard/internal/modules/banguard/service"
	escalation "github.com/reshetovitsme/chat-guard/internal/modules/escalation/service"
	execdomain "github.com/reshetovitsme/chat-guard/internal/modules/executor/domain"
	fwdomain "github.com/reshetovitsme/chat-guard/internal/modules/firewall/domain"
	firewall "github.com/reshetovitsme/chat-guard/internal/modules/firewall/service"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	policydomain "github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	"github.com/reshetovitsme/chat-guard/internal/shared/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatID = int64(-100)

var noon = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakePolicy struct {
	snap *policydomain.Snapshot
	ok   bool
}

func (p *fakePolicy) Snapshot(context.Context, int64) (*policydomain.Snapshot, bool) {
	return p.snap, p.ok
}

type fakeRoles struct {
	role  msgdomain.Role
	calls atomic.Int32
}

func (r *fakeRoles) ResolveRole(context.Context, int64, int64, time.Time) msgdomain.Role {
	r.calls.Add(1)
	return r.role
}

type fakeExecutor struct {
	mu       sync.Mutex
	contexts []*execdomain.ProcessingContext
	actions  [][]action.Action
}

func (e *fakeExecutor) Execute(_ context.Context, pc *execdomain.ProcessingContext, actions []action.Action) execdomain.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.contexts = append(e.contexts, pc)
	e.actions = append(e.actions, actions)
	return execdomain.Report{Executed: action.Kinds(actions)}
}

type fakeRules struct {
	rules []*fwdomain.Rule
}

func (r *fakeRules) ListRules(context.Context, int64) ([]*fwdomain.Rule, error) { return r.rules, nil }

func (r *fakeRules) GetRule(context.Context, string) (*fwdomain.Rule, error) { return nil, nil }

func (r *fakeRules) SaveRule(context.Context, map[string]any) (*fwdomain.Rule, error) {
	return nil, nil
}

func (r *fakeRules) DeleteRule(context.Context, string) error { return nil }

type fixture struct {
	policy   *fakePolicy
	roles    *fakeRoles
	executor *fakeExecutor
	service  *Service
}

func newFixture(snap *policydomain.Snapshot, rules ...*fwdomain.Rule) *fixture {
	f := &fixture{
		policy:   &fakePolicy{snap: snap, ok: snap != nil},
		roles:    &fakeRoles{role: msgdomain.RoleMember},
		executor: &fakeExecutor{},
	}
	engine := firewall.New(&fakeRules{rules: rules}, escalation.New(time.Hour), time.Minute)
	f.service = New(f.policy, f.roles, banguard.New(window.NewMemoryStore()), engine, f.executor, Options{})
	return f
}

func message(text string) msgdomain.Message {
	return msgdomain.Message{
		ID:     9,
		Date:   noon.Unix(),
		ChatID: chatID,
		Sender: msgdomain.Sender{ID: 7},
		Text:   text,
	}
}

func airdropRule() *fwdomain.Rule {
	return &fwdomain.Rule{
		ID:         "airdrop",
		Name:       "airdrop",
		Scope:      fwdomain.ScopeGroup,
		ChatID:     chatID,
		Enabled:    true,
		Priority:   10,
		Severity:   1,
		Conditions: []fwdomain.Condition{{Kind: fwdomain.ConditionKindKeyword, Keywords: []string{"airdrop"}, Match: fwdomain.MatchAny}},
		Actions:    []fwdomain.RuleAction{{Kind: fwdomain.RuleActionKindWarn}},
	}
}

func always(keys ...policydomain.BanRuleKey) map[policydomain.BanRuleKey]policydomain.BanRuleSetting {
	rules := make(map[policydomain.BanRuleKey]policydomain.BanRuleSetting, len(keys))
	for _, k := range keys {
		rules[k] = policydomain.BanRuleSetting{Enabled: true, Schedule: policydomain.Schedule{Always: true}}
	}
	return rules
}

func TestUnmanagedChatIsSkipped(t *testing.T) {
	f := newFixture(nil, airdropRule())

	out, err := f.service.Process(context.Background(), message("free airdrop now"))
	require.NoError(t, err)

	assert.False(t, out.Managed)
	assert.Empty(t, out.Actions)
	assert.Empty(t, f.executor.actions)
}

func TestBanGuardShortCircuitsFirewall(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(&policydomain.Snapshot{
		ChatID:   chatID,
		BanRules: &policydomain.BanRules{Rules: always(policydomain.BanLinks), Blacklist: []string{"spam.example"}},
	}, airdropRule())

	out, err := f.service.Process(context.Background(), message("airdrop at http://spam.example/x"))
	require.NoError(t, err)

	assert.Equal([]action.ActionKind{
		action.ActionKindDeleteMessage,
		action.ActionKindLog,
		action.ActionKindWarnMember,
		action.ActionKindRecordModeration,
	}, action.Kinds(out.Actions))
	assert.Empty(out.Firewall.Matches)

	record := out.Actions[3].(action.RecordModeration)
	assert.Equal(BanGuardRuleID, record.RuleID)
	assert.Equal(int64(7), record.UserID)
	assert.Equal("ban rules", record.Reason)
	assert.Equal([]string{string(policydomain.BanLinks)}, record.Metadata["rules"])

	require.Len(t, f.executor.actions, 1)
	assert.Equal(out.Actions, f.executor.actions[0])
}

func TestAirdropReachesFirewall(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(&policydomain.Snapshot{ChatID: chatID, BanRules: &policydomain.BanRules{}}, airdropRule())

	out, err := f.service.Process(context.Background(), message("free airdrop now"))
	require.NoError(t, err)

	assert.True(out.Managed)
	assert.Empty(out.BanGuard.Actions)
	require.Len(t, out.Firewall.Matches, 1)
	assert.Equal("airdrop", out.Firewall.Matches[0].RuleID)

	warns := 0
	for _, a := range out.Actions {
		if a.Kind() == action.ActionKindWarnMember {
			warns++
		}
	}
	assert.Equal(1, warns)
	assert.Contains(action.Kinds(out.Actions), action.ActionKindRecordRuleAudit)
}

func TestCleanMessageExecutesNothing(t *testing.T) {
	f := newFixture(&policydomain.Snapshot{ChatID: chatID}, airdropRule())

	out, err := f.service.Process(context.Background(), message("good morning"))
	require.NoError(t, err)

	assert.True(t, out.Managed)
	assert.Empty(t, out.Actions)
	assert.Empty(t, f.executor.actions)
}

func TestJoinLeaveMessages(t *testing.T) {
	tests := []struct {
		name   string
		remove bool
		want   []action.ActionKind
	}{
		{name: "removed", remove: true, want: []action.ActionKind{action.ActionKindDeleteMessage}},
		{name: "kept", remove: false, want: []action.ActionKind{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&policydomain.Snapshot{
				ChatID:  chatID,
				General: &policydomain.GeneralSettings{RemoveJoinLeaveMessages: tt.remove},
			}, airdropRule())

			msg := message("")
			msg.JoinLeave = true
			out, err := f.service.Process(context.Background(), msg)
			require.NoError(t, err)

			assert.Equal(t, tt.want, action.Kinds(out.Actions))
			assert.Nil(t, out.Facts)
		})
	}
}

func TestRoleResolvedOnceAndOnlyWhenNeeded(t *testing.T) {
	silenced := &policydomain.Snapshot{
		ChatID:  chatID,
		Silence: &policydomain.SilenceSettings{EmergencyLock: policydomain.EmergencyLock{Enabled: true}},
	}
	roleRule := &fwdomain.Rule{
		ID:         "admins",
		Name:       "admins",
		Scope:      fwdomain.ScopeGlobal,
		Enabled:    true,
		Severity:   1,
		Conditions: []fwdomain.Condition{{Kind: fwdomain.ConditionKindUserRole, Roles: []msgdomain.Role{msgdomain.RoleAdmin}}},
		Actions:    []fwdomain.RuleAction{{Kind: fwdomain.RuleActionKindLog}},
	}

	f := newFixture(silenced, roleRule)
	f.roles.role = msgdomain.RoleAdmin

	out, err := f.service.Process(context.Background(), message("hello"))
	require.NoError(t, err)

	assert.Empty(t, out.BanGuard.Actions)
	require.Len(t, out.Firewall.Matches, 1)
	assert.Equal(t, int32(1), f.roles.calls.Load())

	clean := newFixture(&policydomain.Snapshot{ChatID: chatID}, airdropRule())
	_, err = clean.service.Process(context.Background(), message("hello"))
	require.NoError(t, err)
	assert.Zero(t, clean.roles.calls.Load())
}

func TestKnownSenderRoleSkipsLookup(t *testing.T) {
	f := newFixture(&policydomain.Snapshot{
		ChatID:  chatID,
		Silence: &policydomain.SilenceSettings{EmergencyLock: policydomain.EmergencyLock{Enabled: true}},
	})

	msg := message("hello")
	msg.Sender.Role = msgdomain.RoleOwner
	out, err := f.service.Process(context.Background(), msg)
	require.NoError(t, err)

	assert.Empty(t, out.Actions)
	assert.Zero(t, f.roles.calls.Load())
}

func TestProcessingContextCarriesMessageState(t *testing.T) {
	general := &policydomain.GeneralSettings{WarningEnabled: true}
	caps := &policydomain.Capabilities{Delete: true, Send: true}
	f := newFixture(&policydomain.Snapshot{ChatID: chatID, General: general, Capabilities: caps}, airdropRule())

	msg := message("airdrop")
	msg.ChatIsForum = true
	msg.ThreadID = 5
	_, err := f.service.Process(context.Background(), msg)
	require.NoError(t, err)

	require.Len(t, f.executor.contexts, 1)
	pc := f.executor.contexts[0]
	assert.Equal(t, chatID, pc.ChatID)
	assert.True(t, pc.ChatIsForum)
	assert.Equal(t, 5, pc.ThreadID)
	assert.Equal(t, 9, pc.MessageID)
	assert.Equal(t, int64(7), pc.SenderID)
	assert.Same(t, general, pc.General)
	assert.True(t, pc.Capabilities.Resolved())
}

func TestCancelledContext(t *testing.T) {
	f := newFixture(&policydomain.Snapshot{ChatID: chatID})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Process(ctx, message("hello"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSameChatIsSerialized(t *testing.T) {
	f := newFixture(&policydomain.Snapshot{
		ChatID: chatID,
		Limits: &policydomain.LimitSettings{MessagesPerWindow: 5, WindowMinutes: 1},
	})

	var wg sync.WaitGroup
	var limited atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.service.Process(context.Background(), message("hello"))
			if err == nil && len(out.BanGuard.Limits) > 0 {
				limited.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), limited.Load())
}

func TestChatLocksAreBounded(t *testing.T) {
	f := newFixture(&policydomain.Snapshot{ChatID: chatID})

	assert.Same(t, f.service.lockFor(-1001234), f.service.lockFor(-1001234))

	seen := map[*sync.Mutex]bool{}
	for id := int64(-50_000); id < 50_000; id++ {
		seen[f.service.lockFor(id)] = true
	}
	assert.LessOrEqual(t, len(seen), lockShards)
}
