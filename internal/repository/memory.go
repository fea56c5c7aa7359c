package repository

import (
	"context"
	"sync"
)

// MemoryStore keeps slots in process memory. It mirrors the session copy of the
// document and backs tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Kind implements BlobStore.
func (m *MemoryStore) Kind() string { return "memory" }

// Get returns a copy of the stored bytes.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// Put stores a copy of data.
func (m *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	valueCopy := make([]byte, len(data))
	copy(valueCopy, data)
	m.entries[key] = valueCopy
	return nil
}

// Delete removes key.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Close drops every entry.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string][]byte)
	return nil
}

var _ BlobStore = (*MemoryStore)(nil)
