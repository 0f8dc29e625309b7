package tokenstore

import "sync"

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token *string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get() (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == nil {
		return "", false, nil
	}
	return *m.token, true, nil
}

func (m *MemoryStore) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = &token
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = nil
	return nil
}
