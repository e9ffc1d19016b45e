package logstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists one JSON file per category under a directory.
// Reads and writes are whole-file; the store is safe for concurrent use
// within a single process.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(category Category) string {
	return filepath.Join(s.dir, string(category)+".json")
}

func (s *FileStore) Append(category Category, entry Entry) error {
	if !category.Valid() {
		return &ErrUnknownCategory{Category: string(category)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read(category)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	return s.write(category, entries)
}

func (s *FileStore) List(category Category) ([]Entry, error) {
	if !category.Valid() {
		return nil, &ErrUnknownCategory{Category: string(category)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(category)
}

func (s *FileStore) Clear(category Category) error {
	if !category.Valid() {
		return &ErrUnknownCategory{Category: string(category)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(category))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileStore) read(category Category) ([]Entry, error) {
	data, err := os.ReadFile(s.path(category))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("corrupt log file %s: %w", s.path(category), err)
	}
	return entries, nil
}

func (s *FileStore) write(category Category, entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(category), data, 0o644)
}

var _ Store = (*FileStore)(nil)
