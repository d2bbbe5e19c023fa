package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const probeKeyPrefix = "__storage_probe"

// RedisBackend defines a public type used by goRelier APIs.
//
// RedisBackend instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend describes the newredisbackend operation and its observable behavior.
//
// NewRedisBackend may return an error when input validation, dependency calls, or security checks fail.
// NewRedisBackend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// GetItem describes the getitem operation and its observable behavior.
//
// GetItem may return an error when input validation, dependency calls, or security checks fail.
// GetItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *RedisBackend) GetItem(ctx context.Context, key string) (string, error) {
	value, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrItemNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

// SetItem describes the setitem operation and its observable behavior.
//
// SetItem may return an error when input validation, dependency calls, or security checks fail.
// SetItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *RedisBackend) SetItem(ctx context.Context, key, value string) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// RemoveItem describes the removeitem operation and its observable behavior.
//
// RemoveItem may return an error when input validation, dependency calls, or security checks fail.
// RemoveItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *RedisBackend) RemoveItem(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *RedisBackend) Clear(ctx context.Context, prefix string) error {
	iter := b.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := b.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

// IsRedisEnabled reports whether the client can serve as a durable backend.
// The probe is a sentinel write+delete, mirroring the capability check a
// browser performs against localStorage before trusting it.
func IsRedisEnabled(ctx context.Context, client *redis.Client, timeout time.Duration) bool {
	if client == nil {
		return false
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	key := probeKeyPrefix + ":" + uuid.NewString()
	if err := client.Set(ctx, key, "probe", time.Minute).Err(); err != nil {
		return false
	}
	return client.Del(ctx, key).Err() == nil
}
