package storage

import (
	"context"
	"sync"
)

// MemoryBackend is an in-process Backend. It is the fallback when no
// persistent backend exists.
type MemoryBackend struct {
	mu     sync.RWMutex
	items  map[string][]byte
	closed bool
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		items: make(map[string][]byte),
	}
}

// GetItem returns a copy of the blob stored under key.
func (m *MemoryBackend) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, false, ErrClosed
	}

	data, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}

	// Return a copy to prevent mutations
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	return dataCopy, true, nil
}

// SetItem stores a copy of value under key.
func (m *MemoryBackend) SetItem(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	dataCopy := make([]byte, len(value))
	copy(dataCopy, value)
	m.items[key] = dataCopy
	return nil
}

// RemoveItem deletes key.
func (m *MemoryBackend) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	delete(m.items, key)
	return nil
}

// Clear removes every key.
func (m *MemoryBackend) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string][]byte)
}

// Len returns the number of stored keys.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Close releases the stored data. Later operations return ErrClosed.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.items = nil
	return nil
}
