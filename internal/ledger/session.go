package ledger

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/coinfold/coinfold/internal/identity"
)

// PendingTransfer is a staged withdrawal awaiting a send target. It exists
// only in the session that staged it and is lost when the session ends; the
// staged coins remain in the sender's holding until SendPending commits.
type PendingTransfer struct {
	Coin   string
	Amount decimal.Decimal
}

// Session tracks one authenticated user's in-memory state. Concurrent
// requests may carry the same token, so the mutable state behind mu is
// guarded: the engine holds mu for the whole of any operation that reads or
// writes the staged transfer, which also guarantees a stage commits at most
// once.
type Session struct {
	identity identity.Identity

	mu      sync.Mutex
	pending *PendingTransfer
}

// IdentityID returns the account the session is bound to.
func (s *Session) IdentityID() string {
	return s.identity.ID
}

// SeedPhrase returns the phrase generated at signup. Sessions established
// via login or recovery carry no phrase.
func (s *Session) SeedPhrase() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.identity.SeedPhrase))
	copy(out, s.identity.SeedPhrase)
	return out
}

// Pending returns the staged transfer, if any.
func (s *Session) Pending() (PendingTransfer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return PendingTransfer{}, false
	}
	return *s.pending, true
}
