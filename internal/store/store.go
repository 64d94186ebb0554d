// Package store is the storage port for identities and asset balances. It
// exposes a narrow interface with a PostgreSQL implementation for durable
// state and an in-memory implementation for tests and dev mode.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Namespace partitions balances into fiat money and coin holdings. Each
// namespace maps to its own table.
type Namespace string

const (
	// NamespaceFiat holds fiat currency balances such as USD.
	NamespaceFiat Namespace = "fiat"
	// NamespaceCoin holds crypto coin holdings such as Bitcoin.
	NamespaceCoin Namespace = "coin"
)

// Valid reports whether ns names a known namespace.
func (ns Namespace) Valid() bool {
	return ns == NamespaceFiat || ns == NamespaceCoin
}

func errUnknownNamespace(ns Namespace) error {
	return fmt.Errorf("unknown namespace %q", ns)
}

// Holding is one (symbol, amount) row owned by an identity. Absence of a row
// means a zero balance; rows are created lazily on first credit.
type Holding struct {
	Symbol string
	Amount decimal.Decimal
}

var (
	// ErrNotFound indicates a lookup matched no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID indicates an identity insert collided on the id.
	ErrDuplicateID = errors.New("identity id already exists")
	// ErrDuplicateSeed indicates an identity insert collided on the seed phrase.
	ErrDuplicateSeed = errors.New("seed phrase already exists")
)

// Store persists identities and their asset balances.
//
// GetBalance distinguishes "no row" (zero amount, found=false, nil error)
// from a failed lookup (non-nil error); callers must never treat a lookup
// failure as a zero balance.
//
// Atomic runs fn against a transactional view of the store: either every
// write in fn becomes visible at once, or none does. Reads inside the
// transaction lock the rows they touch. Nested Atomic calls join the
// enclosing transaction.
type Store interface {
	EnsureSchema(ctx context.Context) error

	InsertIdentity(ctx context.Context, id, password, canonicalSeed string) error
	IdentityExists(ctx context.Context, id string) (bool, error)
	FindIdentityByPassword(ctx context.Context, password string) (string, error)
	FindIdentityBySeed(ctx context.Context, canonicalSeed string) (string, error)
	UpdatePassword(ctx context.Context, id, newPassword string) error

	GetBalance(ctx context.Context, id string, ns Namespace, symbol string) (decimal.Decimal, bool, error)
	UpsertBalance(ctx context.Context, id string, ns Namespace, symbol string, amount decimal.Decimal) error
	ListBalances(ctx context.Context, id string, ns Namespace) ([]Holding, error)

	Atomic(ctx context.Context, fn func(Store) error) error
}
