package service

import (
	"context"
	"strings"
	"testing"
	"time"

	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/audit/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	t.Helper()

	repo, err := repository.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	s := New(repo)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestRecordModeration(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	err := s.Record(ctx, -100, action.RecordModeration{
		RuleID:  "ban-rules",
		UserID:  42,
		Actions: []action.ActionKind{action.ActionKindDeleteMessage, action.ActionKindWarnMember},
		Reason:  "ban rules",
	})
	require.NoError(t, err)

	entries, err := s.Entries(ctx, -100, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ban-rules", entries[0].RuleID)
	assert.Equal(t, int64(42), entries[0].UserID)
	assert.Equal(t, "delete_message,warn_member", entries[0].Summary)
	assert.Equal(t, action.ActionKindRecordModeration, entries[0].Kind)
}

func TestRecordRejectsNonAuditActions(t *testing.T) {
	s := newService(t)

	err := s.Record(context.Background(), -100, action.DeleteMessage{MessageID: 1})
	require.Error(t, err)
}

func TestEntriesNewestFirstWithLimit(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	for _, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, s.Record(ctx, -100, action.RecordRuleAudit{RuleID: id, OffenderID: 7, ActionSummary: "delete_message"}))
	}

	entries, err := s.Entries(ctx, -100, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "r3", entries[0].RuleID)
	assert.Equal(t, "r2", entries[1].RuleID)

	other, err := s.Entries(ctx, -200, 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGenerateFeed(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, -100, action.RecordRuleAudit{
		RuleID:        "airdrop",
		OffenderID:    7,
		ActionSummary: "delete_message,warn",
		Payload:       map[string]any{"text": "<b>free</b>"},
	}))

	feed, err := s.GenerateFeed(ctx, -100, "http://localhost:8080")
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "http://localhost:8080/audit/-100", feed.Link.Href)

	item := feed.Items[0]
	assert.Equal(t, "airdrop: delete_message,warn (user 7)", item.Title)
	assert.Contains(t, item.Content, "&lt;b&gt;free&lt;/b&gt;")

	rss, err := feed.ToRss()
	require.NoError(t, err)
	assert.True(t, strings.Contains(rss, "<rss"))
}
