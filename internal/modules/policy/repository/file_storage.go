package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	"github.com/reshetovitsme/chat-guard/internal/shared/errors"
	"github.com/samber/oops"
)

// FileStorage implements Repository and GroupState with one JSON document per chat
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

var (
	_ Repository = (*FileStorage)(nil)
	_ GroupState = (*FileStorage)(nil)
)

// NewFileStorage creates a new file-based policy repository
func NewFileStorage(basePath string) (*FileStorage, error) {
	chatPath := filepath.Join(basePath, "chats")
	if err := os.MkdirAll(chatPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create chats directory").Wrap(err)
	}

	return &FileStorage{basePath: chatPath}, nil
}

func (s *FileStorage) path(chatID int64) string {
	return filepath.Join(s.basePath, strconv.FormatInt(chatID, 10)+".json")
}

// SavePolicy stores the full policy document of a chat
func (s *FileStorage) SavePolicy(policy *ChatPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(policy)
}

func (s *FileStorage) write(policy *ChatPolicy) error {
	data, err := json.MarshalIndent(policy, "", "  ")
	if err != nil {
		return oops.With("chat_id", policy.ChatID, "context", "failed to marshal policy").Wrap(err)
	}
	return os.WriteFile(s.path(policy.ChatID), data, 0644)
}

// GetPolicy loads the policy document of a chat
func (s *FileStorage) GetPolicy(chatID int64) (*ChatPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(chatID)
}

func (s *FileStorage) read(chatID int64) (*ChatPolicy, error) {
	data, err := os.ReadFile(s.path(chatID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrChatNotManaged
		}
		return nil, oops.With("chat_id", chatID, "context", "failed to read policy").Wrap(err)
	}

	var policy ChatPolicy
	if err := json.Unmarshal(data, &policy); err != nil {
		return nil, oops.With("chat_id", chatID, "context", "failed to unmarshal policy").Wrap(err)
	}
	return &policy, nil
}

func (s *FileStorage) IsManaged(_ context.Context, chatID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.path(chatID))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, oops.With("chat_id", chatID, "context", "failed to stat policy").Wrap(err)
}

func (s *FileStorage) GetBanRules(_ context.Context, chatID int64) (*domain.BanRules, error) {
	policy, err := s.GetPolicy(chatID)
	if err != nil {
		return nil, err
	}
	return policy.BanRules, nil
}

func (s *FileStorage) GetGeneral(_ context.Context, chatID int64) (*domain.GeneralSettings, error) {
	policy, err := s.GetPolicy(chatID)
	if err != nil {
		return nil, err
	}
	return policy.General, nil
}

func (s *FileStorage) GetSilence(_ context.Context, chatID int64) (*domain.SilenceSettings, error) {
	policy, err := s.GetPolicy(chatID)
	if err != nil {
		return nil, err
	}
	return policy.Silence, nil
}

func (s *FileStorage) GetLimits(_ context.Context, chatID int64) (*domain.LimitSettings, error) {
	policy, err := s.GetPolicy(chatID)
	if err != nil {
		return nil, err
	}
	return policy.Limits, nil
}

func (s *FileStorage) SetAdminRestricted(_ context.Context, chatID int64, restricted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy, err := s.read(chatID)
	if err != nil {
		return err
	}
	if policy.AdminRestricted == restricted {
		return nil
	}
	policy.AdminRestricted = restricted
	return s.write(policy)
}
