package cache

import (
	"context"
	"time"
)

// Cache is a string key/value store with per entry expiry.
type Cache interface {
	// Get returns ok=false when the key is missing or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Ping(ctx context.Context) error
}
