// Package storage provides object store backends for uploaded files.
// Swap implementations by changing the concrete type injected at startup:
// the MinIO adapter works with any S3-compatible provider, the Supabase
// adapter talks to Supabase Storage over its REST API.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectExists signals that the target object name is already taken.
var ErrObjectExists = errors.New("object already exists")

// ObjectStore is the interface for persisting uploaded files.
type ObjectStore interface {
	// Put streams data to the store under the given name without
	// overwriting. It returns ErrObjectExists when the name is taken,
	// otherwise the storage path of the new object.
	Put(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error)
	// PublicURL constructs the browser-accessible URL for a stored object.
	PublicURL(name string) string
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
