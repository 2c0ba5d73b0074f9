package profiles

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore is a DocumentStore kept in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Fields
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Fields)}
}

func (m *MemoryStore) SetDocument(_ context.Context, collection, id string, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[collection+"/"+id] = maps.Clone(fields)
	return nil
}

func (m *MemoryStore) GetDocument(_ context.Context, collection, id string) (Fields, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.docs[collection+"/"+id]
	if !ok {
		return nil, ErrNotFound
	}
	return maps.Clone(f), nil
}

func (m *MemoryStore) UpdateDocument(_ context.Context, collection, id string, partial Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := collection + "/" + id
	f, ok := m.docs[key]
	if !ok {
		f = Fields{}
	}
	maps.Copy(f, partial)
	m.docs[key] = f
	return nil
}
