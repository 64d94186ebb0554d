package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMemoryIdentityLifecycle(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.InsertIdentity(ctx, "id-1", "secret", "abandon baby cable"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.InsertIdentity(ctx, "id-1", "other", "damage eager fabric"); err != ErrDuplicateID {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if err := s.InsertIdentity(ctx, "id-2", "other", "abandon baby cable"); err != ErrDuplicateSeed {
		t.Fatalf("expected ErrDuplicateSeed, got %v", err)
	}

	id, err := s.FindIdentityByPassword(ctx, "secret")
	if err != nil || id != "id-1" {
		t.Fatalf("find by password: id=%q err=%v", id, err)
	}
	id, err = s.FindIdentityBySeed(ctx, "abandon baby cable")
	if err != nil || id != "id-1" {
		t.Fatalf("find by seed: id=%q err=%v", id, err)
	}
	if _, err := s.FindIdentityByPassword(ctx, "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	exists, err := s.IdentityExists(ctx, "id-1")
	if err != nil || !exists {
		t.Fatalf("identity exists: %v %v", exists, err)
	}

	if err := s.UpdatePassword(ctx, "id-1", "rotated"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if _, err := s.FindIdentityByPassword(ctx, "secret"); err != ErrNotFound {
		t.Fatalf("old password still matches: %v", err)
	}
	if _, err := s.FindIdentityByPassword(ctx, "rotated"); err != nil {
		t.Fatalf("new password does not match: %v", err)
	}
	if err := s.UpdatePassword(ctx, "missing", "x"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryBalancesDistinguishAbsentFromZero(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, found, err := s.GetBalance(ctx, "id-1", NamespaceFiat, "USD")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected absent row")
	}

	if err := s.UpsertBalance(ctx, "id-1", NamespaceFiat, "USD", decimal.Zero); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	amount, found, err := s.GetBalance(ctx, "id-1", NamespaceFiat, "USD")
	if err != nil || !found {
		t.Fatalf("get after upsert: found=%v err=%v", found, err)
	}
	if !amount.IsZero() {
		t.Fatalf("expected zero, got %s", amount)
	}
}

func TestMemoryNamespacesAreSeparate(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.UpsertBalance(ctx, "id-1", NamespaceFiat, "USD", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("upsert fiat: %v", err)
	}
	if err := s.UpsertBalance(ctx, "id-1", NamespaceCoin, "Bitcoin", decimal.RequireFromString("0.5")); err != nil {
		t.Fatalf("upsert coin: %v", err)
	}

	_, found, err := s.GetBalance(ctx, "id-1", NamespaceCoin, "USD")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("fiat symbol leaked into coin namespace")
	}

	fiat, err := s.ListBalances(ctx, "id-1", NamespaceFiat)
	if err != nil {
		t.Fatalf("list fiat: %v", err)
	}
	if len(fiat) != 1 || fiat[0].Symbol != "USD" {
		t.Fatalf("unexpected fiat holdings: %+v", fiat)
	}
}

func TestMemoryAtomicSerializesUpdates(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Atomic(ctx, func(tx Store) error {
				current, _, err := tx.GetBalance(ctx, "id-1", NamespaceFiat, "USD")
				if err != nil {
					return err
				}
				return tx.UpsertBalance(ctx, "id-1", NamespaceFiat, "USD", current.Add(decimal.NewFromInt(5)))
			})
			if err != nil {
				t.Errorf("atomic: %v", err)
			}
		}()
	}
	wg.Wait()

	amount, _, err := s.GetBalance(ctx, "id-1", NamespaceFiat, "USD")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if want := decimal.NewFromInt(workers * 5); !amount.Equal(want) {
		t.Fatalf("lost update: got %s want %s", amount, want)
	}
}

func TestMemoryAtomicNests(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	err := s.Atomic(ctx, func(tx Store) error {
		return tx.Atomic(ctx, func(inner Store) error {
			return inner.UpsertBalance(ctx, "id-1", NamespaceCoin, "Bitcoin", decimal.NewFromInt(1))
		})
	})
	if err != nil {
		t.Fatalf("nested atomic: %v", err)
	}

	amount, found, err := s.GetBalance(ctx, "id-1", NamespaceCoin, "Bitcoin")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if !amount.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected amount %s", amount)
	}
}

func TestMemoryAtomicRollsBackOnError(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.UpsertBalance(ctx, "id-1", NamespaceFiat, "USD", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	failure := errors.New("boom")
	err := s.Atomic(ctx, func(tx Store) error {
		if err := tx.UpsertBalance(ctx, "id-1", NamespaceFiat, "USD", decimal.NewFromInt(40)); err != nil {
			return err
		}
		if err := tx.UpsertBalance(ctx, "id-1", NamespaceCoin, "Bitcoin", decimal.NewFromInt(1)); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("atomic err = %v, want the closure error", err)
	}

	// Writes made before the failure are rolled back.
	amount, found, err := s.GetBalance(ctx, "id-1", NamespaceFiat, "USD")
	if err != nil || !found {
		t.Fatalf("get usd: found=%v err=%v", found, err)
	}
	if !amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("usd = %s after rollback, want 100", amount)
	}
	if _, found, _ := s.GetBalance(ctx, "id-1", NamespaceCoin, "Bitcoin"); found {
		t.Fatal("coin row survived rollback")
	}
}

func TestMemoryUnknownNamespace(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if _, _, err := s.GetBalance(ctx, "id-1", Namespace("bogus"), "USD"); err == nil {
		t.Fatal("expected error for unknown namespace")
	}
	if err := s.UpsertBalance(ctx, "id-1", Namespace("bogus"), "USD", decimal.Zero); err == nil {
		t.Fatal("expected error for unknown namespace")
	}
}

func TestMemoryListBalancesSorted(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	for i, symbol := range []string{"Litecoin", "Bitcoin", "Ethereum"} {
		if err := s.UpsertBalance(ctx, "id-1", NamespaceCoin, symbol, decimal.NewFromInt(int64(i+1))); err != nil {
			t.Fatalf("upsert %s: %v", symbol, err)
		}
	}

	holdings, err := s.ListBalances(ctx, "id-1", NamespaceCoin)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := ""
	for _, h := range holdings {
		got += h.Symbol + " "
	}
	if want := "Bitcoin Ethereum Litecoin "; got != want {
		t.Fatalf("unexpected order: %s", got)
	}
}
