package store

import (
	"encoding/json"
	"sync"

	"xenarc-chat-demo/backend/pkg/logger"
)

// MemoryStore is a thread-safe in-memory adapter. It backs tests and
// single-run development sessions; nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	logger *logger.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
		logger: log,
	}
}

func (s *MemoryStore) Load(key string, dest any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return decode(s.logger, key, raw, dest), nil
}

func (s *MemoryStore) Save(key string, value any) error {
	if value == nil {
		return s.Delete(key)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// Corrupt overwrites a key with non-JSON content. Test hook for the
// corrupt-entry fallback path.
func (s *MemoryStore) Corrupt(key string) {
	s.mu.Lock()
	s.values[key] = []byte("{not json")
	s.mu.Unlock()
}
