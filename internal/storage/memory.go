package storage

import (
	"context"
	"sync"
)

var _ KeyValueStore = (*MemoryStore)(nil)

// MemoryStore keeps values in process memory. Nothing survives a restart;
// it is the default for local development and the double used in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string

	// Hooks let tests inject failures. nil means no failure.
	GetErr    error
	SetErr    error
	RemoveErr error
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return "", false, wrapErr(BackendMemory, "get", key, m.GetErr)
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return wrapErr(BackendMemory, "set", key, m.SetErr)
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveErr != nil {
		return wrapErr(BackendMemory, "remove", key, m.RemoveErr)
	}
	delete(m.values, key)
	return nil
}

// SetFailures swaps the injected errors under the lock.
func (m *MemoryStore) SetFailures(getErr, setErr, removeErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetErr, m.SetErr, m.RemoveErr = getErr, setErr, removeErr
}
