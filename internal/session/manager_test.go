package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coinfold/coinfold/internal/ledger"
	"github.com/coinfold/coinfold/internal/logging"
	"github.com/coinfold/coinfold/internal/prices"
	"github.com/coinfold/coinfold/internal/store"
)

func newSession(t *testing.T) *ledger.Session {
	t.Helper()
	engine := ledger.NewEngine(store.NewMemory(), prices.Static(), nil, 0, logging.Discard())
	s, err := engine.Signup(context.Background(), "pw", 12)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	return s
}

func TestIssueAndGet(t *testing.T) {
	m := NewManager(time.Hour)
	s := newSession(t)

	token := m.Issue(s)
	got, err := m.Get(token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != s {
		t.Fatal("Get returned a different session")
	}

	if _, err := m.Get("no-such-token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown token: err = %v, want ErrNotFound", err)
	}
}

func TestRevoke(t *testing.T) {
	m := NewManager(time.Hour)
	token := m.Issue(newSession(t))

	m.Revoke(token)
	if _, err := m.Get(token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("revoked token: err = %v, want ErrNotFound", err)
	}

	// Revoking twice is harmless.
	m.Revoke(token)
}

func TestExpiryAndLeaseExtension(t *testing.T) {
	m := NewManager(time.Minute)

	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	token := m.Issue(newSession(t))

	// Touching the session inside the window extends the lease.
	current = current.Add(45 * time.Second)
	if _, err := m.Get(token); err != nil {
		t.Fatalf("Get within ttl: %v", err)
	}
	current = current.Add(45 * time.Second)
	if _, err := m.Get(token); err != nil {
		t.Fatalf("Get after extension: %v", err)
	}

	// Going idle past the window expires it.
	current = current.Add(2 * time.Minute)
	if _, err := m.Get(token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired token: err = %v, want ErrNotFound", err)
	}
}

func TestTokensAreUnique(t *testing.T) {
	m := NewManager(time.Hour)
	s := newSession(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := m.Issue(s)
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}
