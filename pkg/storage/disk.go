// Package storage is the object store for uploaded files such as menu item
// images.
//
// Two drivers ship with it:
//   - "local" writes under STORAGE_LOCAL_ROOT and serves from STORAGE_URL
//   - "s3" targets S3-compatible storage (AWS S3, MinIO, R2)
//
//	storage.Connect(ctx)
//	url, err := storage.Store(ctx, "menuImages/123_ab_paneer-tikka", file)
//	...
//	storage.DeleteURL(ctx, url)
package storage

import (
	"context"
	"io"
)

// Disk is implemented by every driver.
type Disk interface {
	// Put writes content to path.
	Put(ctx context.Context, path string, content []byte) error

	// PutStream writes everything read from r to path.
	PutStream(ctx context.Context, path string, r io.Reader) error

	// Get returns the content stored at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether path holds an object.
	Exists(ctx context.Context, path string) bool

	// Delete removes path. A missing object is not an error.
	Delete(ctx context.Context, path string) error

	// URL is the public URL of path.
	URL(path string) string

	// Key is the inverse of URL. ok is false for URLs this disk did not
	// produce.
	Key(url string) (key string, ok bool)
}
