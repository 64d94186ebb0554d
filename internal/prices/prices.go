// Package prices supplies coin price quotes to the ledger engine.
package prices

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Coin pairs a tradable symbol with its quoted USD price.
type Coin struct {
	Symbol string
	Price  decimal.Decimal
}

// ErrUnknownCoin occurs when no quote exists for a symbol.
var ErrUnknownCoin = errors.New("unknown coin")

// Source supplies coin prices. A quote must be positive; the engine rejects
// non-positive prices before dividing by them.
type Source interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
	List(ctx context.Context) ([]Coin, error)
}

// StaticSource serves quotes from a fixed table.
type StaticSource struct {
	coins []Coin
}

// NewStatic builds a source over the given quote table.
func NewStatic(coins ...Coin) *StaticSource {
	return &StaticSource{coins: coins}
}

// Static returns the built-in quote table.
func Static() *StaticSource {
	return NewStatic(
		Coin{Symbol: "Bitcoin", Price: decimal.RequireFromString("63250")},
		Coin{Symbol: "Ethereum", Price: decimal.RequireFromString("3100")},
		Coin{Symbol: "Dogecoin", Price: decimal.RequireFromString("0.14")},
		Coin{Symbol: "Litecoin", Price: decimal.RequireFromString("85")},
		Coin{Symbol: "Cardano", Price: decimal.RequireFromString("0.45")},
	)
}

// Price returns the quote for symbol.
func (s *StaticSource) Price(_ context.Context, symbol string) (decimal.Decimal, error) {
	for _, c := range s.coins {
		if c.Symbol == symbol {
			return c.Price, nil
		}
	}
	return decimal.Zero, ErrUnknownCoin
}

// List returns every quoted coin in table order.
func (s *StaticSource) List(_ context.Context) ([]Coin, error) {
	out := make([]Coin, len(s.coins))
	copy(out, s.coins)
	return out, nil
}
