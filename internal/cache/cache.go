package cache

import (
	"context"
	"time"
)

// Cache defines the cache interface
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, pattern string) error
}

// CacheKey generates a namespaced cache key
func CacheKey(namespace, id string) string {
	return namespace + ":" + id
}
