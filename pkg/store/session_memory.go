package store

import (
	"sync"

	"facultyportal/pkg/domain"
)

// MemorySessionStore keeps token -> session bindings in-process.
// Sessions do not survive a restart.
type MemorySessionStore struct {
	mu   sync.RWMutex
	sess map[string]domain.Session
}

// NewMemorySessionStore initializes an empty session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sess: make(map[string]domain.Session)}
}

// NewSession binds a fresh token to the identity.
func (m *MemorySessionStore) NewSession(s domain.Session) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := newToken()
	m.sess[token] = s
	return token, nil
}

// SessionByToken resolves a token to its identity.
func (m *MemorySessionStore) SessionByToken(token string) (domain.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sess[token]
	return s, ok, nil
}

// DeleteSession removes a token binding; unknown tokens are a no-op.
func (m *MemorySessionStore) DeleteSession(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sess, token)
	return nil
}
