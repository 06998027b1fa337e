package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/reshetovitsme/chat-guard/internal/modules/executor/domain"
	"github.com/samber/oops"
)

// FileStorage implements PendingStore with one JSON list per chat
type FileStorage struct {
	basePath string
	mu       sync.Mutex
}

// NewFileStorage creates a new file-based pending send store
func NewFileStorage(basePath string) (*FileStorage, error) {
	pendingPath := filepath.Join(basePath, "pending")
	if err := os.MkdirAll(pendingPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create pending directory").Wrap(err)
	}

	return &FileStorage{basePath: pendingPath}, nil
}

func (s *FileStorage) path(chatID int64) string {
	return filepath.Join(s.basePath, strconv.FormatInt(chatID, 10)+".json")
}

func (s *FileStorage) SavePending(_ context.Context, send *domain.PendingSend) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if send.ID == "" {
		send.ID = uuid.NewString()
	}

	sends, err := s.read(send.ChatID)
	if err != nil {
		return err
	}
	sends = append(sends, send)

	data, err := json.MarshalIndent(sends, "", "  ")
	if err != nil {
		return oops.With("chat_id", send.ChatID, "context", "failed to marshal pending sends").Wrap(err)
	}
	return os.WriteFile(s.path(send.ChatID), data, 0644)
}

func (s *FileStorage) TakePending(_ context.Context, chatID int64) ([]*domain.PendingSend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sends, err := s.read(chatID)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(s.path(chatID)); err != nil && !os.IsNotExist(err) {
		return nil, oops.With("chat_id", chatID, "context", "failed to remove pending sends").Wrap(err)
	}
	return sends, nil
}

func (s *FileStorage) read(chatID int64) ([]*domain.PendingSend, error) {
	data, err := os.ReadFile(s.path(chatID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, oops.With("chat_id", chatID, "context", "failed to read pending sends").Wrap(err)
	}

	var sends []*domain.PendingSend
	if err := json.Unmarshal(data, &sends); err != nil {
		return nil, oops.With("chat_id", chatID, "context", "failed to unmarshal pending sends").Wrap(err)
	}
	return sends, nil
}
