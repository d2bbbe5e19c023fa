package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultNamespace is an exported constant or variable used by the storage layer.
const DefaultNamespace = "__gorelier"

// Store defines a public type used by goRelier APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	backend  Backend
	prefix   string
	degraded bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(backend Backend, prefix string) *Store {
	degraded := false
	if backend == nil {
		backend = NewMemoryBackend()
		degraded = true
	}
	if prefix == "" {
		prefix = DefaultNamespace
	}

	return &Store{
		backend:  backend,
		prefix:   prefix,
		degraded: degraded,
	}
}

// Factory builds a store on the durable Redis backend when the capability
// probe passes, and on the in-memory fallback otherwise. The choice is
// observable only through [Store.IsDegraded].
func Factory(ctx context.Context, client *redis.Client, prefix string, probeTimeout time.Duration) *Store {
	if !IsRedisEnabled(ctx, client, probeTimeout) {
		store := New(NewMemoryBackend(), prefix)
		store.degraded = true
		return store
	}
	return New(NewRedisBackend(client), prefix)
}

func (s *Store) fullKey(key string) string {
	return s.prefix + ":" + key
}

// Get loads and deserializes the value stored under key into dest. It returns
// false when no value is stored, the backend faults, or the stored payload is
// not parseable. Malformed data is treated as absence, not failure.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	if s == nil {
		return false
	}

	raw, err := s.backend.GetItem(ctx, s.fullKey(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false
	}
	return true
}

// Set serializes value and stores it under key. Backend faults are swallowed:
// persistence is best-effort and a degraded store must never fail its caller.
func (s *Store) Set(ctx context.Context, key string, value any) {
	if s == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.backend.SetItem(ctx, s.fullKey(key), string(raw))
}

// Remove deletes the entry for key. Removing an absent key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) {
	if s == nil {
		return
	}
	_ = s.backend.RemoveItem(ctx, s.fullKey(key))
}

// Clear deletes every entry under this store's namespace.
func (s *Store) Clear(ctx context.Context) {
	if s == nil {
		return
	}
	_ = s.backend.Clear(ctx, s.prefix+":")
}

// IsDegraded reports whether the store runs on the non-durable fallback
// backend. Callers use it to warn that state will not survive a reload.
func (s *Store) IsDegraded() bool {
	return s == nil || s.degraded
}
