package price

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/xrpbridge/bridge-api-service/internal/cache"
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

const cacheKeyPrefix = "price:usd:"

// CachedSource serves prices from the cache and falls back to the wrapped
// source on a miss. Cache failures are logged and never fail a quote.
type CachedSource struct {
	source Source
	cache  cache.Cache
	ttl    time.Duration
}

func NewCachedSource(source Source, c cache.Cache, ttl time.Duration) *CachedSource {
	return &CachedSource{source: source, cache: c, ttl: ttl}
}

func (s *CachedSource) UsdPrice(ctx context.Context, symbol types.TokenSymbol) (decimal.Decimal, *types.Error) {
	key := cacheKeyPrefix + symbol.ToString()

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("token", symbol.ToString()).Msg("price cache read failed")
	} else if ok {
		if price, parseErr := decimal.NewFromString(cached); parseErr == nil && price.IsPositive() {
			return price, nil
		}
	}

	price, priceErr := s.source.UsdPrice(ctx, symbol)
	if priceErr != nil {
		return decimal.Zero, priceErr
	}

	if err := s.cache.Set(ctx, key, price.String(), s.ttl); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("token", symbol.ToString()).Msg("price cache write failed")
	}
	return price, nil
}
