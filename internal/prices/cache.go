package prices

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const priceKeyPrefix = "price:v1:"

// CachedSource reads quotes through a Redis cache in front of another
// source. Cache failures fall back to the underlying source; caching is
// never allowed to fail a price lookup.
type CachedSource struct {
	next  Source
	cache *redis.Client
	ttl   time.Duration
}

// NewCached wraps next with a Redis read-through cache.
func NewCached(next Source, cache *redis.Client, ttl time.Duration) *CachedSource {
	return &CachedSource{next: next, cache: cache, ttl: ttl}
}

// Price serves the cached quote when present, otherwise fetches from the
// underlying source and stores the result.
func (s *CachedSource) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	key := priceKeyPrefix + symbol

	cached, err := s.cache.Get(ctx, key).Result()
	if err == nil {
		if price, perr := decimal.NewFromString(cached); perr == nil {
			return price, nil
		}
		// Unparseable entry: drop it and refetch.
		s.cache.Del(ctx, key)
	}

	price, err := s.next.Price(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	s.cache.Set(ctx, key, price.String(), s.ttl) // best effort
	return price, nil
}

// List is served straight from the underlying source.
func (s *CachedSource) List(ctx context.Context) ([]Coin, error) {
	return s.next.List(ctx)
}
