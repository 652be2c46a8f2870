// Package storage defines the interface for media object storage.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by Delete when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

// Object is the handle returned for a stored blob.
type Object struct {
	// URL is the browser-accessible address of the stored object.
	URL string
	// FileID identifies the object for later deletion.
	FileID string
}

// MediaStore is the interface for storing and deleting media blobs.
type MediaStore interface {
	// Store writes data under a fresh key derived from name and returns
	// the public URL and the key needed to delete the object later.
	Store(ctx context.Context, data []byte, name string) (*Object, error)
	// Delete removes the object identified by fileID.
	// Returns ErrObjectNotFound when no such object exists.
	Delete(ctx context.Context, fileID string) error
}
