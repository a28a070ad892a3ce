package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRemoteMiss indicates the requested key was not found in the remote
// backend. A miss is an answer, not a failure: it never triggers fallback.
var ErrRemoteMiss = errors.New("remote cache miss")

// RemoteStore is the remote key-value backend consumed by the Facade.
// Implementations return ErrRemoteMiss for absent keys and real errors for
// transport failures.
type RemoteStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) (int64, error)

	// IncrWithExpiry atomically increments the decimal counter under key
	// and refreshes its expiry to window from now.
	IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error)
}

// redisStore adapts a go-redis client to the RemoteStore interface.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a Redis client as the facade's remote backend.
func NewRedisStore(client *redis.Client) RemoteStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &redisStore{client: client}
}

func (r *redisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrRemoteMiss
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (r *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *redisStore) Del(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis del: %w", err)
	}
	return n, nil
}

func (r *redisStore) IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	return incr.Val(), nil
}
