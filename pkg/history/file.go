package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps one JSON file per entry in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore returns a store rooted at baseDir, creating it if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("history dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the store directory.
func (s *FileStore) Path() string { return s.baseDir }

func (s *FileStore) entryPath(id string) string {
	return filepath.Join(s.baseDir, filepath.Base(id)+".json")
}

func (s *FileStore) Add(ctx context.Context, e *Entry) error {
	if e == nil || e.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	if err := os.WriteFile(s.entryPath(e.ID), data, 0o600); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.entryPath(id))
}

func (s *FileStore) read(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read entry: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse entry %s: %w", filepath.Base(path), err)
	}
	return &e, nil
}

// List skips files that cannot be parsed.
func (s *FileStore) List(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read history dir: %w", err)
	}
	var out []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		e, err := s.read(filepath.Join(s.baseDir, f.Name()))
		if err != nil || e == nil {
			continue
		}
		out = append(out, *e)
	}
	return sortNewest(out, limit), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.entryPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove entry: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("read history dir: %w", err)
	}
	n := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, f.Name())); err != nil {
			return n, fmt.Errorf("remove entry: %w", err)
		}
		n++
	}
	return n, nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
