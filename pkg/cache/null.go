package cache

import (
	"context"
	"time"
)

// nullCache satisfies Cache without storing anything: every Get misses and
// every write succeeds silently. It backs runs with caching disabled.
type nullCache struct{}

// NewNullCache returns the cache that caches nothing.
func NewNullCache() Cache { return nullCache{} }

func (nullCache) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }

func (nullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (nullCache) Delete(ctx context.Context, key string) error { return nil }

func (nullCache) Close() error { return nil }
