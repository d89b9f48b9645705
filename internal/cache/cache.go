// internal/cache/cache.go
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry. Lookups
// past the entry's TTL behave as misses. Invalidate is unconditional and a
// no-op for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}
