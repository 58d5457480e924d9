package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"xenarc-chat-demo/backend/pkg/logger"
)

// FileStore persists the whole key space as one JSON document on disk.
// It is the durable default for a single-node deployment. Writes go
// through a temp file and rename so a crash mid-write cannot leave a
// truncated document behind.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]json.RawMessage
	logger *logger.Logger
}

// NewFileStore opens (or creates) the store file at path. An unreadable
// or corrupt file is logged and replaced with an empty key space on the
// next write.
func NewFileStore(path string, log *logger.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		values: make(map[string]json.RawMessage),
		logger: log,
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run, nothing persisted yet.
	case err != nil:
		return nil, fmt.Errorf("opening store file %s: %w", path, err)
	default:
		if err := json.Unmarshal(raw, &s.values); err != nil {
			if log != nil {
				log.Warn("store file is corrupt, starting empty", "path", path, "error", err.Error())
			}
			s.values = make(map[string]json.RawMessage)
		}
	}

	return s, nil
}

func (s *FileStore) Load(key string, dest any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.values[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return decode(s.logger, key, raw, dest), nil
}

func (s *FileStore) Save(key string, value any) error {
	if value == nil {
		return s.Delete(key)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw
	return s.flushLocked()
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

// flushLocked writes the key space to disk. Callers hold s.mu.
func (s *FileStore) flushLocked() error {
	raw, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
