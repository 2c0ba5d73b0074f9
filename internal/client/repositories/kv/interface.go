package kv

import "context"

// Repository is the device persistence contract.
type Repository interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	// RemoveItems deletes all keys atomically where the backend allows it.
	RemoveItems(ctx context.Context, keys ...string) error
}
