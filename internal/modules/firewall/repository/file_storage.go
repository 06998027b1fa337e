package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reshetovitsme/chat-guard/internal/modules/firewall/domain"
	"github.com/reshetovitsme/chat-guard/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// FileStorage implements Repository using one JSON file per rule
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
	now      func() time.Time
}

// NewFileStorage creates a new file-based rule repository
func NewFileStorage(basePath string) (*FileStorage, error) {
	rulePath := filepath.Join(basePath, "rules")
	if err := os.MkdirAll(rulePath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create rules directory").Wrap(err)
	}

	return &FileStorage{basePath: rulePath, now: time.Now}, nil
}

func (s *FileStorage) path(ruleID string) string {
	return filepath.Join(s.basePath, ruleID+".json")
}

func (s *FileStorage) SaveRule(_ context.Context, raw map[string]any) (*domain.Rule, error) {
	rule, err := domain.ValidateRule(raw)
	if err != nil {
		return nil, err
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if filepath.Base(rule.ID) != rule.ID {
		return nil, &domain.ValidationError{Field: "id", Reason: "must not contain path separators"}
	}
	rule.UpdatedAt = s.now().UTC()

	data, err := json.MarshalIndent(rule, "", "  ")
	if err != nil {
		return nil, oops.With("rule_id", rule.ID, "context", "failed to marshal rule").Wrap(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path(rule.ID), data, 0644); err != nil {
		return nil, oops.With("rule_id", rule.ID, "context", "failed to write rule").Wrap(err)
	}
	return rule, nil
}

func (s *FileStorage) GetRule(_ context.Context, ruleID string) (*domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(ruleID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrRuleNotFound
		}
		return nil, oops.With("rule_id", ruleID, "context", "failed to read rule").Wrap(err)
	}

	var rule domain.Rule
	if err := json.Unmarshal(data, &rule); err != nil {
		return nil, oops.With("rule_id", ruleID, "context", "failed to unmarshal rule").Wrap(err)
	}
	return &rule, nil
}

func (s *FileStorage) ListRules(_ context.Context, chatID int64) ([]*domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, oops.With("directory", s.basePath, "context", "failed to read rules directory").Wrap(err)
	}

	rules := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (*domain.Rule, bool) {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			return nil, false
		}

		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			return nil, false
		}

		var rule domain.Rule
		if err := json.Unmarshal(data, &rule); err != nil {
			return nil, false
		}

		return &rule, rule.AppliesTo(chatID)
	})

	return rules, nil
}

func (s *FileStorage) DeleteRule(_ context.Context, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(ruleID)); err != nil {
		if os.IsNotExist(err) {
			return errors.ErrRuleNotFound
		}
		return oops.With("rule_id", ruleID, "context", "failed to delete rule").Wrap(err)
	}
	return nil
}
