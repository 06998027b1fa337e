package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/reshetovitsme/chat-guard/internal/modules/audit/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// FileStorage implements Repository with one directory per chat and one JSON
// file per entry
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based audit repository
func NewFileStorage(basePath string) (*FileStorage, error) {
	auditPath := filepath.Join(basePath, "audit")
	if err := os.MkdirAll(auditPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create audit directory").Wrap(err)
	}

	return &FileStorage{basePath: auditPath}, nil
}

func (s *FileStorage) chatPath(chatID int64) string {
	return filepath.Join(s.basePath, strconv.FormatInt(chatID, 10))
}

func (s *FileStorage) SaveEntry(_ context.Context, entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.chatPath(entry.ChatID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return oops.With("chat_id", entry.ChatID, "context", "failed to create chat audit directory").Wrap(err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return oops.With("chat_id", entry.ChatID, "entry_id", entry.ID, "context", "failed to marshal entry").Wrap(err)
	}

	return os.WriteFile(filepath.Join(dir, entry.ID+".json"), data, 0644)
}

func (s *FileStorage) GetEntries(_ context.Context, chatID int64, limit int) ([]*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := s.chatPath(chatID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, oops.With("chat_id", chatID, "context", "failed to read chat audit directory").Wrap(err)
	}

	records := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (*domain.Entry, bool) {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			return nil, false
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, false
		}

		var record domain.Entry
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, false
		}

		return &record, true
	})

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}
