// Package storage persists photo blobs. Keys are owner-scoped relative
// paths ("<login>/<filename>"); backends are local disk and S3, selected
// by configuration.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrExists is returned by Rename when the destination key is taken.
var ErrExists = errors.New("blob already exists")

// BlobStore persists photo file bytes keyed by owner-scoped path.
type BlobStore interface {
	// Save writes the blob under key, overwriting any existing blob.
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	// Rename moves a blob to a new key. Fails with ErrExists if the
	// destination is already taken.
	Rename(ctx context.Context, oldKey, newKey string) error
	// Delete removes a blob. Deleting an absent blob is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
}

// validKey rejects empty, absolute and path-traversing keys.
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
