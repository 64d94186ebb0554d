// Package assets adapts ledger-engine intents onto the storage port: balance
// reads, upserts, and the lookup-or-insert-then-update credit pattern.
package assets

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/coinfold/coinfold/internal/store"
)

// Repository performs balance operations keyed directly by the
// caller-supplied identity string. It does no locking of its own; callers
// serialize conflicting operations on the same identity. Bind a Repository
// to a transactional store view to make a multi-row sequence atomic.
type Repository struct {
	store store.Store
}

// New binds a repository to a store or transactional view of one.
func New(st store.Store) *Repository {
	return &Repository{store: st}
}

// Exists reports whether a balance row exists for the symbol.
func (r *Repository) Exists(ctx context.Context, id, symbol string, ns store.Namespace) (bool, error) {
	_, found, err := r.store.GetBalance(ctx, id, ns, symbol)
	return found, err
}

// Get returns the stored amount, or zero when no row exists yet. Lookup
// failures come back as errors, never as a fabricated zero balance.
func (r *Repository) Get(ctx context.Context, id, symbol string, ns store.Namespace) (decimal.Decimal, error) {
	amount, found, err := r.store.GetBalance(ctx, id, ns, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return decimal.Zero, nil
	}
	return amount, nil
}

// Set upserts one balance row to the given amount.
func (r *Repository) Set(ctx context.Context, id, symbol string, ns store.Namespace, amount decimal.Decimal) error {
	return r.store.UpsertBalance(ctx, id, ns, symbol, amount)
}

// List returns every holding of the identity within the namespace.
func (r *Repository) List(ctx context.Context, id string, ns store.Namespace) ([]store.Holding, error) {
	return r.store.ListBalances(ctx, id, ns)
}

// Credit adds amount to the identity's holding, creating the row on first
// credit, and returns the new balance.
func (r *Repository) Credit(ctx context.Context, id, symbol string, ns store.Namespace, amount decimal.Decimal) (decimal.Decimal, error) {
	current, err := r.Get(ctx, id, symbol, ns)
	if err != nil {
		return decimal.Zero, err
	}
	updated := current.Add(amount)
	if err := r.Set(ctx, id, symbol, ns, updated); err != nil {
		return decimal.Zero, err
	}
	return updated, nil
}
