// Package memory provides an in-process KV backend for development and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gosuda/backoffice/internal/domain"
)

// KV is a map-backed domain.KV. Values are copied on the way in and out.
type KV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New creates an empty KV.
func New() *KV {
	return &KV{values: make(map[string][]byte)}
}

func (m *KV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, fmt.Errorf("memory.KV.Get: %q: %w", key, domain.ErrNotFound)
	}
	return slices.Clone(v), nil
}

func (m *KV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = slices.Clone(value)
	return nil
}

// Update runs fn under the write lock.
func (m *KV) Update(_ context.Context, key string, fn domain.UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, found := m.values[key]
	next, err := fn(slices.Clone(current), found)
	if err != nil {
		return fmt.Errorf("memory.KV.Update: %w", err)
	}
	if next != nil {
		m.values[key] = slices.Clone(next)
	}
	return nil
}

// Keys returns the stored keys starting with prefix, sorted.
func (m *KV) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}
