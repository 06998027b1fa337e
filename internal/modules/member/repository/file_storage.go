package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/reshetovitsme/chat-guard/internal/modules/member/domain"
	"github.com/reshetovitsme/chat-guard/internal/shared/errors"
	"github.com/samber/oops"
)

// FileStorage implements Repository using file system
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based member repository
func NewFileStorage(basePath string) (*FileStorage, error) {
	memberPath := filepath.Join(basePath, "members")
	if err := os.MkdirAll(memberPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create members directory").Wrap(err)
	}

	return &FileStorage{basePath: memberPath}, nil
}

func (s *FileStorage) path(chatID, userID int64) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%d_%d.json", chatID, userID))
}

func (s *FileStorage) SaveMember(_ context.Context, member *domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(member, "", "  ")
	if err != nil {
		return oops.With("chat_id", member.ChatID, "user_id", member.UserID, "context", "failed to marshal member").Wrap(err)
	}

	return os.WriteFile(s.path(member.ChatID, member.UserID), data, 0644)
}

func (s *FileStorage) GetMember(_ context.Context, chatID, userID int64) (*domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(chatID, userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrMemberNotFound
		}
		return nil, oops.With("chat_id", chatID, "user_id", userID, "context", "failed to read member").Wrap(err)
	}

	var member domain.Member
	if err := json.Unmarshal(data, &member); err != nil {
		return nil, oops.With("chat_id", chatID, "user_id", userID, "context", "failed to unmarshal member").Wrap(err)
	}

	return &member, nil
}

func (s *FileStorage) DeleteMember(_ context.Context, chatID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(chatID, userID)); err != nil && !os.IsNotExist(err) {
		return oops.With("chat_id", chatID, "user_id", userID, "context", "failed to delete member").Wrap(err)
	}
	return nil
}

func (s *FileStorage) PurgeJoinedBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, oops.With("directory", s.basePath, "context", "failed to read members directory").Wrap(err)
	}

	purged := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(s.basePath, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var member domain.Member
		if err := json.Unmarshal(data, &member); err != nil {
			continue
		}

		if member.JoinedAt.Before(cutoff) {
			if err := os.Remove(path); err == nil {
				purged++
			}
		}
	}

	return purged, nil
}
