package favorites

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"ihub/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrIdentifierRequired = errors.New("id and media type are required")
)

// Service manages persistence and retrieval of favorited titles.
type Service struct {
	mu    sync.RWMutex
	path  string
	items map[string]models.FavoriteItem
}

// NewService creates a favorites service storing data inside the provided directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create favorites dir: %w", err)
	}

	svc := &Service{
		path:  filepath.Join(storageDir, "favorites.json"),
		items: make(map[string]models.FavoriteItem),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

func itemKey(mediaType models.MediaKind, id string) string {
	return string(mediaType) + ":" + id
}

// List returns all favorites sorted by most recent additions first.
func (s *Service) List() []models.FavoriteItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.FavoriteItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].Record.ID < items[j].Record.ID
		}
		return items[i].AddedAt.After(items[j].AddedAt)
	})

	return items
}

// IsFavorite reports whether the given title is currently favorited.
func (s *Service) IsFavorite(mediaType models.MediaKind, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.items[itemKey(mediaType, id)]
	return ok
}

// Toggle flips favorite membership for a title in a single read-modify-write
// step. It returns true when the title is favorited after the call.
func (s *Service) Toggle(record models.MediaRecord) (bool, error) {
	if strings.TrimSpace(record.ID) == "" || !record.MediaType.Valid() {
		return false, ErrIdentifierRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := itemKey(record.MediaType, record.ID)
	if _, exists := s.items[key]; exists {
		delete(s.items, key)
		if err := s.saveLocked(); err != nil {
			return true, err
		}
		return false, nil
	}

	s.items[key] = models.FavoriteItem{
		Record:  record,
		AddedAt: time.Now().UTC(),
	}
	if err := s.saveLocked(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.items = make(map[string]models.FavoriteItem)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open favorites: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read favorites: %w", err)
	}
	if len(data) == 0 {
		s.items = make(map[string]models.FavoriteItem)
		return nil
	}

	var stored []models.FavoriteItem
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("decode favorites: %w", err)
	}

	s.items = make(map[string]models.FavoriteItem, len(stored))
	for _, item := range stored {
		if strings.TrimSpace(item.Record.ID) == "" {
			continue
		}
		s.items[itemKey(item.Record.MediaType, item.Record.ID)] = item
	}
	return nil
}

func (s *Service) saveLocked() error {
	items := make([]models.FavoriteItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].Record.ID < items[j].Record.ID
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create favorites temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode favorites: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync favorites: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close favorites temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace favorites file: %w", err)
	}

	return nil
}
