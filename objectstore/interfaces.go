package objectstore

import (
	"context"
	"time"
)

// ObjectInfo describes a stored object without its payload.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// Store provides the object-storage operations the pipeline depends on.
// Implementations must be safe for use from a single pipeline run; no
// cross-run coordination is assumed.
type Store interface {
	// ListPrefixes enumerates the immediate sub-prefixes under prefix,
	// one per upstream source namespace.
	ListPrefixes(ctx context.Context, prefix string) ([]string, error)

	// List returns info for every object under prefix, recursively.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Get reads an object's full payload.
	// Returns ErrObjectNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes an object, overwriting any existing payload at key.
	Put(ctx context.Context, key string, data []byte) error
}
