package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"tubequiz/internal/domain"
)

// RedisCacheAdapter stores generated quizzes in Redis through the domain.Cache port.
type RedisCacheAdapter struct {
	client redis.Cmdable
}

// NewRedisCacheAdapter creates a new instance of RedisCacheAdapter.
// It expects a connected client.
func NewRedisCacheAdapter(client redis.Cmdable) *RedisCacheAdapter {
	return &RedisCacheAdapter{client: client}
}

var _ domain.Cache = (*RedisCacheAdapter)(nil)

// Get translates redis.Nil to domain.ErrCacheMiss.
func (r *RedisCacheAdapter) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (r *RedisCacheAdapter) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if err := r.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// SetNX writes value only when key is absent and reports whether it did.
func (r *RedisCacheAdapter) SetNX(ctx context.Context, key string, value string, expiration time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, expiration).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

func (r *RedisCacheAdapter) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *RedisCacheAdapter) ZAdd(ctx context.Context, key string, member string, score float64) error {
	if err := r.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return fmt.Errorf("redis zadd %s: %w", key, err)
	}
	return nil
}

func (r *RedisCacheAdapter) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	members, err := r.client.ZRevRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange %s: %w", key, err)
	}
	return members, nil
}

func (r *RedisCacheAdapter) ZRem(ctx context.Context, key string, member string) error {
	if err := r.client.ZRem(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("redis zrem %s: %w", key, err)
	}
	return nil
}

// Ping checks the health of the Redis server.
func (r *RedisCacheAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
