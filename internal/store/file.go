package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore implements KV on top of a directory of JSON files, one file
// per logical key. Writes go through a temp file plus rename so a crash
// mid-write never leaves a half-written collection behind.
type FileStore struct {
	// dir is the directory holding one <key>.json file per key.
	dir string
}

// NewFileStore creates the directory if needed and returns a FileStore
// rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path returns the file backing the given key.
func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the JSON stored under key. A key that has never been written
// yields (nil, nil).
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Put atomically replaces the JSON stored under key.
func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}
