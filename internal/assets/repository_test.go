package assets

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/coinfold/coinfold/internal/store"
)

func TestGetReturnsZeroForAbsentRow(t *testing.T) {
	repo := New(store.NewMemory())
	ctx := context.Background()

	amount, err := repo.Get(ctx, "id-1", "USD", store.NamespaceFiat)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !amount.IsZero() {
		t.Fatalf("expected zero, got %s", amount)
	}

	exists, err := repo.Exists(ctx, "id-1", "USD", store.NamespaceFiat)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected no row")
	}
}

func TestCreditCreatesThenAccumulates(t *testing.T) {
	repo := New(store.NewMemory())
	ctx := context.Background()

	balance, err := repo.Credit(ctx, "id-1", "USD", store.NamespaceFiat, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("first credit: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", balance)
	}

	balance, err = repo.Credit(ctx, "id-1", "USD", store.NamespaceFiat, decimal.RequireFromString("2.50"))
	if err != nil {
		t.Fatalf("second credit: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("102.50")) {
		t.Fatalf("expected 102.50, got %s", balance)
	}

	exists, err := repo.Exists(ctx, "id-1", "USD", store.NamespaceFiat)
	if err != nil || !exists {
		t.Fatalf("exists after credit: %v %v", exists, err)
	}
}

func TestSetOverwrites(t *testing.T) {
	repo := New(store.NewMemory())
	ctx := context.Background()

	if err := repo.Set(ctx, "id-1", "Bitcoin", store.NamespaceCoin, decimal.RequireFromString("0.5")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set(ctx, "id-1", "Bitcoin", store.NamespaceCoin, decimal.RequireFromString("0.25")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	amount, err := repo.Get(ctx, "id-1", "Bitcoin", store.NamespaceCoin)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !amount.Equal(decimal.RequireFromString("0.25")) {
		t.Fatalf("expected 0.25, got %s", amount)
	}

	holdings, err := repo.List(ctx, "id-1", store.NamespaceCoin)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(holdings) != 1 {
		t.Fatalf("expected a single row, got %d", len(holdings))
	}
}
