package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrItemNotFound is an exported constant or variable used by the storage layer.
var ErrItemNotFound = errors.New("item not found")

// Backend is the raw item-level contract a [Store] is built on. Implementations
// must treat absent keys as [ErrItemNotFound] on read and as a no-op on delete.
type Backend interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Clear(ctx context.Context, prefix string) error
}

// MemoryBackend defines a public type used by goRelier APIs.
//
// MemoryBackend instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryBackend describes the newmemorybackend operation and its observable behavior.
//
// NewMemoryBackend may return an error when input validation, dependency calls, or security checks fail.
// NewMemoryBackend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]string)}
}

// GetItem describes the getitem operation and its observable behavior.
//
// GetItem may return an error when input validation, dependency calls, or security checks fail.
// GetItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *MemoryBackend) GetItem(_ context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.items[key]
	if !ok {
		return "", ErrItemNotFound
	}
	return value, nil
}

// SetItem describes the setitem operation and its observable behavior.
//
// SetItem may return an error when input validation, dependency calls, or security checks fail.
// SetItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *MemoryBackend) SetItem(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[key] = value
	return nil
}

// RemoveItem describes the removeitem operation and its observable behavior.
//
// RemoveItem may return an error when input validation, dependency calls, or security checks fail.
// RemoveItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *MemoryBackend) RemoveItem(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.items, key)
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *MemoryBackend) Clear(_ context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key := range b.items {
		if strings.HasPrefix(key, prefix) {
			delete(b.items, key)
		}
	}
	return nil
}
