package storage

import "context"

// Storage is the key-value substrate the tracker persists its snapshot into.
// Values are opaque encoded blobs; Get omits keys that were never set.
type Storage interface {
	Init(ctx context.Context) error
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	// Set writes all items atomically.
	Set(ctx context.Context, items map[string][]byte) error
	Close() error
}
