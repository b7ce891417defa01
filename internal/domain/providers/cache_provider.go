package providers

import (
	"context"
	"time"
)

// CacheProvider is a byte-oriented cache port. Callers pass logical
// keys; implementations own namespacing and expiry enforcement.
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
