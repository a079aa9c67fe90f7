package cart

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// StorageKey is the fixed namespace the cart persists under, shared with
// any other client of the same store.
const StorageKey = "cart-storage"

// Storage persists the full item list after every mutation. Implementations
// must return an empty list, not an error, when nothing was saved yet.
type Storage interface {
	Load() ([]Item, error)
	Save(items []Item) error
}

// MemoryStorage keeps the item list in memory. Useful for tests and for
// embedding the store without durability.
type MemoryStorage struct {
	items []Item
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load() ([]Item, error) {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items, nil
}

func (s *MemoryStorage) Save(items []Item) error {
	s.items = make([]Item, len(items))
	copy(s.items, items)
	return nil
}

// FileStorage persists the item list as JSON in a file named after
// StorageKey inside dir, surviving restarts of the embedding client.
type FileStorage struct {
	path string
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{path: filepath.Join(dir, StorageKey+".json")}
}

func (s *FileStorage) Load() ([]Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Item{}, nil
		}
		return nil, err
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *FileStorage) Save(items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
