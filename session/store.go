package session

import (
	"sync"
)

// Keys held by the token store.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Store is a persisted key/value holder. Get reports false for a missing key.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps values for the life of the process.
type MemoryStore struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.values = make(map[string]string)
	return nil
}
