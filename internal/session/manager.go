// Package session issues and resolves opaque bearer tokens for
// authenticated ledger sessions. Sessions are held in process memory; a
// restart logs everyone out, which also discards any staged transfer.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coinfold/coinfold/internal/ledger"
)

// ErrNotFound indicates a token that was never issued, was revoked, or has
// expired.
var ErrNotFound = errors.New("session not found")

type entry struct {
	session   *ledger.Session
	expiresAt time.Time
}

// Manager maps bearer tokens to live sessions with a sliding expiry.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

// NewManager creates a manager whose sessions expire after ttl of
// inactivity.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue registers the session and returns its bearer token.
func (m *Manager) Issue(s *ledger.Session) string {
	token := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[token] = &entry{session: s, expiresAt: m.now().Add(m.ttl)}
	return token
}

// Get resolves a token to its session and extends the lease. Expired
// entries are dropped on access.
func (m *Manager) Get(token string) (*ledger.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[token]
	if !ok {
		return nil, ErrNotFound
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, token)
		return nil, ErrNotFound
	}
	e.expiresAt = m.now().Add(m.ttl)
	return e.session, nil
}

// Revoke drops the token. Revoking an unknown token is a no-op.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, token)
}
