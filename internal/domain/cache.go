package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the key/value port generated quizzes are stored through.
// RedisCacheAdapter implements it.
type Cache interface {
	// Get retrieves an item from the cache.
	// It returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)

	// Set adds an item to the cache, overwriting an existing item if one exists.
	// expiration is the duration for which the item should be cached.
	// If expiration is 0, the item is cached indefinitely (if supported by the adapter).
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// SetNX sets key to value only if it does not exist yet.
	// It reports whether the value was written.
	SetNX(ctx context.Context, key string, value string, expiration time.Duration) (bool, error)

	// Delete removes an item from the cache.
	// It should not return an error if the key is not found.
	Delete(ctx context.Context, key string) error

	// ZAdd adds member to the sorted set at key with the given score,
	// updating the score if the member is already present.
	ZAdd(ctx context.Context, key string, member string, score float64) error

	// ZRevRange returns members of the sorted set at key from the highest score
	// down, between the start and stop ranks inclusive (-1 is the last).
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// ZRem removes member from the sorted set at key.
	ZRem(ctx context.Context, key string, member string) error

	// Ping checks the health of the cache service.
	Ping(ctx context.Context) error
}
