package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

type identityRow struct {
	password string
	seed     string
}

// memoryData holds the raw maps; all methods assume the caller serializes
// access.
type memoryData struct {
	identities map[string]identityRow
	balances   map[Namespace]map[string]map[string]decimal.Decimal
}

func newMemoryData() *memoryData {
	return &memoryData{
		identities: make(map[string]identityRow),
		balances: map[Namespace]map[string]map[string]decimal.Decimal{
			NamespaceFiat: make(map[string]map[string]decimal.Decimal),
			NamespaceCoin: make(map[string]map[string]decimal.Decimal),
		},
	}
}

// clone deep-copies the maps so a snapshot can be restored on rollback.
func (d *memoryData) clone() *memoryData {
	out := newMemoryData()
	for id, row := range d.identities {
		out.identities[id] = row
	}
	for ns, accounts := range d.balances {
		for id, rows := range accounts {
			copied := make(map[string]decimal.Decimal, len(rows))
			for symbol, amount := range rows {
				copied[symbol] = amount
			}
			out.balances[ns][id] = copied
		}
	}
	return out
}

func (d *memoryData) insertIdentity(id, password, seed string) error {
	if _, exists := d.identities[id]; exists {
		return ErrDuplicateID
	}
	for _, row := range d.identities {
		if row.seed == seed {
			return ErrDuplicateSeed
		}
	}
	d.identities[id] = identityRow{password: password, seed: seed}
	return nil
}

func (d *memoryData) identityExists(id string) bool {
	_, ok := d.identities[id]
	return ok
}

func (d *memoryData) findByPassword(password string) (string, error) {
	for id, row := range d.identities {
		if row.password == password {
			return id, nil
		}
	}
	return "", ErrNotFound
}

func (d *memoryData) findBySeed(seed string) (string, error) {
	for id, row := range d.identities {
		if row.seed == seed {
			return id, nil
		}
	}
	return "", ErrNotFound
}

func (d *memoryData) updatePassword(id, newPassword string) error {
	row, ok := d.identities[id]
	if !ok {
		return ErrNotFound
	}
	row.password = newPassword
	d.identities[id] = row
	return nil
}

func (d *memoryData) getBalance(id string, ns Namespace, symbol string) (decimal.Decimal, bool, error) {
	if !ns.Valid() {
		return decimal.Zero, false, errUnknownNamespace(ns)
	}
	amount, ok := d.balances[ns][id][symbol]
	if !ok {
		return decimal.Zero, false, nil
	}
	return amount, true, nil
}

func (d *memoryData) upsertBalance(id string, ns Namespace, symbol string, amount decimal.Decimal) error {
	if !ns.Valid() {
		return errUnknownNamespace(ns)
	}
	rows, ok := d.balances[ns][id]
	if !ok {
		rows = make(map[string]decimal.Decimal)
		d.balances[ns][id] = rows
	}
	rows[symbol] = amount
	return nil
}

func (d *memoryData) listBalances(id string, ns Namespace) ([]Holding, error) {
	if !ns.Valid() {
		return nil, errUnknownNamespace(ns)
	}
	rows := d.balances[ns][id]
	holdings := make([]Holding, 0, len(rows))
	for symbol, amount := range rows {
		holdings = append(holdings, Holding{Symbol: symbol, Amount: amount})
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return holdings, nil
}

// MemoryStore is a concurrency-safe in-memory store used by tests and dev
// mode. Atomic holds the write lock for the whole closure, so concurrent
// readers never observe a half-applied multi-row update.
type MemoryStore struct {
	mu   sync.RWMutex
	data *memoryData
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{data: newMemoryData()}
}

func (s *MemoryStore) EnsureSchema(context.Context) error { return nil }

func (s *MemoryStore) InsertIdentity(_ context.Context, id, password, seed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.insertIdentity(id, password, seed)
}

func (s *MemoryStore) IdentityExists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.identityExists(id), nil
}

func (s *MemoryStore) FindIdentityByPassword(_ context.Context, password string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.findByPassword(password)
}

func (s *MemoryStore) FindIdentityBySeed(_ context.Context, seed string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.findBySeed(seed)
}

func (s *MemoryStore) UpdatePassword(_ context.Context, id, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.updatePassword(id, newPassword)
}

func (s *MemoryStore) GetBalance(_ context.Context, id string, ns Namespace, symbol string) (decimal.Decimal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getBalance(id, ns, symbol)
}

func (s *MemoryStore) UpsertBalance(_ context.Context, id string, ns Namespace, symbol string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.upsertBalance(id, ns, symbol, amount)
}

func (s *MemoryStore) ListBalances(_ context.Context, id string, ns Namespace) ([]Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listBalances(id, ns)
}

// Atomic serializes fn against every other store operation. The closure
// receives an unlocked view over the same data; calling back into the outer
// store from fn would deadlock. On error the data is restored from a
// snapshot, matching the Postgres rollback behavior.
func (s *MemoryStore) Atomic(ctx context.Context, fn func(Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&memoryView{data: s.data}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// memoryView is the transactional face of MemoryStore: same data, no
// locking, usable only while the owning Atomic call holds the lock.
type memoryView struct {
	data *memoryData
}

func (v *memoryView) EnsureSchema(context.Context) error { return nil }

func (v *memoryView) InsertIdentity(_ context.Context, id, password, seed string) error {
	return v.data.insertIdentity(id, password, seed)
}

func (v *memoryView) IdentityExists(_ context.Context, id string) (bool, error) {
	return v.data.identityExists(id), nil
}

func (v *memoryView) FindIdentityByPassword(_ context.Context, password string) (string, error) {
	return v.data.findByPassword(password)
}

func (v *memoryView) FindIdentityBySeed(_ context.Context, seed string) (string, error) {
	return v.data.findBySeed(seed)
}

func (v *memoryView) UpdatePassword(_ context.Context, id, newPassword string) error {
	return v.data.updatePassword(id, newPassword)
}

func (v *memoryView) GetBalance(_ context.Context, id string, ns Namespace, symbol string) (decimal.Decimal, bool, error) {
	return v.data.getBalance(id, ns, symbol)
}

func (v *memoryView) UpsertBalance(_ context.Context, id string, ns Namespace, symbol string, amount decimal.Decimal) error {
	return v.data.upsertBalance(id, ns, symbol, amount)
}

func (v *memoryView) ListBalances(_ context.Context, id string, ns Namespace) ([]Holding, error) {
	return v.data.listBalances(id, ns)
}

func (v *memoryView) Atomic(_ context.Context, fn func(Store) error) error {
	return fn(v)
}
