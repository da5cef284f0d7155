package storage

import (
	"context"
	"fmt"
	"sync"
)

// Storage is the persisted key/value area backing one or many workspaces.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Persisted keys.
const (
	KeyAdminToken     = "admin_token"
	KeyRefreshToken   = "refresh_token"
	KeySessionExpired = "session_expired"
	KeyCommentsTab    = "adminCommentsTab"
	KeyAuthSnapshot   = "auth-storage"
)

type memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns a process-local Storage.
func NewMemory() Storage {
	return &memory{data: make(map[string]string)}
}

func (m *memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}

type namespaced struct {
	prefix string
	inner  Storage
}

// Namespace scopes every key of s under "gb:<id>:".
func Namespace(s Storage, id string) Storage {
	return &namespaced{prefix: fmt.Sprintf("gb:%s:", id), inner: s}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = n.prefix + k
	}
	return n.inner.Delete(ctx, full...)
}
