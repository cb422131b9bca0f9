package domain

import "context"

// KV is the persistent key-value boundary under the Store. Values are opaque
// serialized bytes. Get returns ErrNotFound for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// UpdateFunc computes the next value of a key from its current value.
// Returning a nil slice and a nil error leaves the key untouched.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

// Updater is implemented by backends that can apply an UpdateFunc atomically
// with respect to other writers of the same key.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// Lister is implemented by backends that can enumerate their keys. Keys
// returns the stored keys starting with prefix, sorted.
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}
