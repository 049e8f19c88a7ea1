// Package cache holds the selection-cache port and its implementations.
package cache

import (
	"context"
	"time"
)

// Store is a best-effort key/value store with per-key TTL. Callers must treat
// errors and misses the same way.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Noop never remembers anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error)        { return "", false, nil }
func (Noop) Set(context.Context, string, string, time.Duration) error { return nil }
