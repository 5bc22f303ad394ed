package providers

import (
	"context"
	"time"
)

// CacheProvider defines the shared key/value operations used for rate limiting and work claims
type CacheProvider interface {
	// Increment bumps a counter, starting its expiry window on first use, and returns the new value
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)

	// TTL returns the remaining lifetime of a key
	TTL(ctx context.Context, key string) (time.Duration, error)

	// SetIfAbsent stores value only when key does not exist and reports whether it did
	SetIfAbsent(ctx context.Context, key string, value []byte, expiration time.Duration) (bool, error)

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error
}
