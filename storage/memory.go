package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore keeps objects in process memory. Used in development when no
// bucket is configured, and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

const memoryPrefix = "memory://"

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
	return memoryPrefix + key, nil
}

func (m *MemoryStore) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.TrimPrefix(url, memoryPrefix)
	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("object %q not found", key)
	}
	delete(m.objects, key)
	return nil
}

// Get returns a copy of a stored object.
func (m *MemoryStore) Get(url string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[strings.TrimPrefix(url, memoryPrefix)]
	return append([]byte(nil), b...), ok
}

// Len reports how many objects are stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
