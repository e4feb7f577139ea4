package storage

import (
	"context"
	"errors"
	"io"
	"sync"
)

// MemoryObjectStore keeps blobs in-process for tests.
type MemoryObjectStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// FailPut and FailDelete force the next call of that kind to fail,
	// for exercising the two-store failure asymmetries.
	FailPut    bool
	FailDelete bool
}

// NewMemoryObjectStore initializes an empty blob store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{blobs: make(map[string][]byte)}
}

// Put stores the bytes at key.
func (m *MemoryObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if m.FailPut {
		return errors.New("object store unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return nil
}

// URL returns a synthetic URL for a key.
func (m *MemoryObjectStore) URL(key string) string {
	return "memory://" + key
}

// Delete removes the blob at key.
func (m *MemoryObjectStore) Delete(_ context.Context, key string) error {
	if m.FailDelete {
		return errors.New("object store unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

// Len returns the number of stored blobs.
func (m *MemoryObjectStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// Get returns the stored bytes for a key, for test assertions.
func (m *MemoryObjectStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	return data, ok
}
