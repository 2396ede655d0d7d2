// Package cache memoizes aggregated search results so repeated queries don't
// re-hit the upstream providers inside a TTL window.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-value store with per-entry TTL. Implementations must treat
// every internal failure as a miss: a broken cache degrades performance, it
// never breaks a search.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}
