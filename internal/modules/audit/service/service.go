package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"
	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/audit/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/audit/repository"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const feedSize = 50

// Service persists audit intents and renders them as RSS
type Service struct {
	repo repository.Repository
	now  func() time.Time
}

// New creates a new audit service
func New(repo repository.Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Record persists a record_moderation or record_rule_audit intent
func (s *Service) Record(ctx context.Context, chatID int64, a action.Action) error {
	entry := &domain.Entry{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Kind:      a.Kind(),
		CreatedAt: s.now().UTC(),
	}

	switch a := a.(type) {
	case action.RecordModeration:
		entry.RuleID = a.RuleID
		entry.UserID = a.UserID
		entry.Reason = a.Reason
		entry.Details = a.Metadata
		entry.Summary = strings.Join(lo.Map(a.Actions, func(k action.ActionKind, _ int) string { return k.String() }), ",")
	case action.RecordRuleAudit:
		entry.RuleID = a.RuleID
		entry.UserID = a.OffenderID
		entry.Summary = a.ActionSummary
		entry.Details = a.Payload
	default:
		return oops.With("kind", a.Kind()).Errorf("action %s is not an audit record", a.Kind())
	}

	if err := s.repo.SaveEntry(ctx, entry); err != nil {
		return oops.With("chat_id", chatID, "context", "failed to save audit entry").Wrap(err)
	}
	return nil
}

// Entries returns the latest entries of a chat
func (s *Service) Entries(ctx context.Context, chatID int64, limit int) ([]*domain.Entry, error) {
	return s.repo.GetEntries(ctx, chatID, limit)
}

// GenerateFeed generates an RSS feed of the latest entries of a chat
func (s *Service) GenerateFeed(ctx context.Context, chatID int64, baseURL string) (*feeds.Feed, error) {
	entries, err := s.repo.GetEntries(ctx, chatID, feedSize)
	if err != nil {
		return nil, oops.With("chat_id", chatID, "context", "failed to get audit entries").Wrap(err)
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Moderation log of chat %d", chatID),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/audit/%d", baseURL, chatID)},
		Description: fmt.Sprintf("Enforcement actions taken in chat %d", chatID),
		Created:     s.now(),
	}
	if len(entries) > 0 {
		feed.Updated = entries[0].CreatedAt
	}

	feed.Items = lo.Map(entries, func(e *domain.Entry, _ int) *feeds.Item {
		return s.entryToFeedItem(e, baseURL)
	})
	return feed, nil
}

func (s *Service) entryToFeedItem(e *domain.Entry, baseURL string) *feeds.Item {
	title := fmt.Sprintf("%s: %s", e.RuleID, e.Summary)
	if e.UserID != 0 {
		title = fmt.Sprintf("%s (user %d)", title, e.UserID)
	}

	description := e.Summary
	if e.Reason != "" {
		description = fmt.Sprintf("%s: %s", e.Reason, e.Summary)
	}

	content := fmt.Sprintf("<p>%s</p>", html.EscapeString(description))
	if len(e.Details) > 0 {
		content += "<ul>"
		keys := lo.Keys(e.Details)
		sort.Strings(keys)
		for _, k := range keys {
			content += fmt.Sprintf("<li>%s: %s</li>", html.EscapeString(k), html.EscapeString(fmt.Sprint(e.Details[k])))
		}
		content += "</ul>"
	}

	return &feeds.Item{
		Title:       title,
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/audit/%d#%s", baseURL, e.ChatID, e.ID)},
		Description: description,
		Content:     content,
		Created:     e.CreatedAt,
		Id:          e.ID,
	}
}
