package lists

import (
	"context"
	"sync"
)

// MemoryStore keeps lists in process memory. Missing keys read as empty.
type MemoryStore struct {
	mu     sync.Mutex
	lists  map[string][]string
	writes []string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store seeded with a copy of initial.
func NewMemoryStore(initial map[string][]string) *MemoryStore {
	store := &MemoryStore{lists: make(map[string][]string, len(initial))}
	for key, names := range initial {
		store.lists[key] = append([]string(nil), names...)
	}
	return store
}

func (m *MemoryStore) ReadList(_ context.Context, key string) ([]string, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.lists[key]...), nil
}

func (m *MemoryStore) WriteList(_ context.Context, key string, names []string) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append([]string{}, names...)
	m.writes = append(m.writes, key)
	return nil
}

// Writes returns the keys written so far, in order.
func (m *MemoryStore) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}
