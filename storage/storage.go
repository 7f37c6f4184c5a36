// Package storage keeps the bytes of uploaded audio files. Writes are two-phase:
// bytes are staged under a temporary key and committed to their final key once
// the metadata row referencing that key exists.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrObjectNotFound = errors.New("storage: object not found")
	ErrTooLarge       = errors.New("storage: object exceeds size limit")
	ErrInvalidKey     = errors.New("storage: invalid key")
)

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Size    int64
	ModTime time.Time
}

// Storage defines how audio bytes are stored
type Storage interface {
	// Stage writes at most limit bytes from r under a new temporary key
	Stage(ctx context.Context, r io.Reader, limit int64) (tempKey string, n int64, err error)
	// Commit moves a staged object to key, replacing any existing object
	Commit(ctx context.Context, tempKey, key string) error
	// Discard drops a staged object; a missing object is not an error
	Discard(ctx context.Context, tempKey string) error
	// Open returns the object's bytes. The reader also implements io.Seeker when the backend supports it.
	Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Remove(ctx context.Context, key string) error
}
