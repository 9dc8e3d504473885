// Package storage provides namespaced key-value stores. Recipes are kept
// under a fixed namespace in whichever store the app is configured with.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/logger"
)

// Item is one stored value.
type Item struct {
	Key   string
	Value []byte
}

// KV is a namespaced key-value store. Get and Delete return
// domain.ErrNotFound for missing keys. List returns items sorted by key.
type KV interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	List(ctx context.Context, namespace string) ([]Item, error)
}

// Compile-time interface check.
var _ KV = (*MemoryKV)(nil)

// MemoryKV is an in-memory store. Safe for concurrent access.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
	log  *logger.Logger
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV(log *logger.Logger) *MemoryKV {
	return &MemoryKV{
		data: make(map[string]map[string][]byte),
		log:  log,
	}
}

// Get returns a copy of the value stored under key.
func (s *MemoryKV) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[namespace][key]
	if !ok {
		s.log.Debug("key not found: %s/%s", namespace, key)
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put stores value under key. Overwrites if it already exists.
func (s *MemoryKV) Put(ctx context.Context, namespace, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		s.data[namespace] = ns
	}
	ns[key] = append([]byte(nil), value...)
	s.log.Debug("put %s/%s (%d bytes)", namespace, key, len(value))
	return nil
}

// Delete removes key.
func (s *MemoryKV) Delete(ctx context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[namespace][key]; !ok {
		return domain.ErrNotFound
	}
	delete(s.data[namespace], key)
	s.log.Debug("deleted %s/%s", namespace, key)
	return nil
}

// List returns every item in namespace.
func (s *MemoryKV) List(ctx context.Context, namespace string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.data[namespace]))
	for k, v := range s.data[namespace] {
		out = append(out, Item{Key: k, Value: append([]byte(nil), v...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	s.log.Debug("listing %s, count=%d", namespace, len(out))
	return out, nil
}
