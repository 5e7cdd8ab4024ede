// Package storage provides the durable key-value slot the studio keeps its
// credential in.
package storage

import "context"

// Slot is a string key-value store.
type Slot interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
