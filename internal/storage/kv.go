// Package storage provides the key-value persistence used for favorites,
// settings, and the selected location. Values are JSON-serialized strings;
// a write must complete before the mutation that produced it is considered
// durable.
package storage

import "context"

// KV is an async get/set string store.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores the value for key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
