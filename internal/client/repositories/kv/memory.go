package kv

import (
	"context"
	"sync"
)

// MemoryRepository keeps items in a map. Safe for concurrent use.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]string)}
}

func (r *MemoryRepository) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[key]
	return v, ok, nil
}

func (r *MemoryRepository) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key] = value
	return nil
}

func (r *MemoryRepository) RemoveItem(ctx context.Context, key string) error {
	return r.RemoveItems(ctx, key)
}

func (r *MemoryRepository) RemoveItems(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		delete(r.items, k)
	}
	return nil
}

// Len returns the number of stored items.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
