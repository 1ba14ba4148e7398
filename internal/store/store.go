// Package store defines the durable key/value layer behind the search
// registry: a flat namespace of tag -> serialized SearchRecord.
package store

import (
	"context"
	"errors"
)

// Backend names accepted by Open.
const (
	BackendRedis  = "redis"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store persists serialized search records keyed by tag.
//
// Implementations must make a single Put or Remove atomic: LoadAll never
// observes a half-written value. A successful Put is visible to the next
// LoadAll.
type Store interface {
	// LoadAll returns every stored tag with its raw value.
	// An empty or newly created store yields an empty map.
	LoadAll(ctx context.Context) (map[string][]byte, error)

	// Put creates or overwrites the value for tag.
	Put(ctx context.Context, tag string, raw []byte) error

	// Remove deletes tag. Removing an absent tag is not an error.
	Remove(ctx context.Context, tag string) error

	// Close releases the underlying resources.
	Close() error
}

// Counter reports how many searches the store holds. The number can exceed
// the registry's when the store has tags that differ only by case.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
