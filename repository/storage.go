package repository

import (
	"context"
	"sync"
)

// ClientStorage is the durable key/value store a session's state is mirrored
// to. Values are JSON documents under fixed keys.
type ClientStorage interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Fixed storage keys.
const (
	CartKey     = "cart"
	CartOpenKey = "cart_open"
	SessionKey  = "auth_user"
	RegistryKey = "all_users"
)

type scopedStorage struct {
	inner  ClientStorage
	prefix string
}

// Scoped returns a view of inner whose keys are namespaced by scope, so each
// browser session gets its own cart and session entries.
func Scoped(inner ClientStorage, scope string) ClientStorage {
	return &scopedStorage{inner: inner, prefix: "session:" + scope + ":"}
}

func (s *scopedStorage) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scopedStorage) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scopedStorage) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.prefix+key)
}

// MemoryStorage keeps values in process memory. Used for local runs without
// Redis and in tests.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
