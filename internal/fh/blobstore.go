package fh

import (
	"context"
	"fmt"

	"fh-go/internal/model"
)

// BlobStore holds content payloads keyed by their content hash.
// Payloads are immutable once written. Implementations do no reference
// counting: the service decides when a blob is garbage.
type BlobStore interface {
	// Put stores content under hash. Storing a hash that already exists is a
	// no-op. A failed Put never leaves a partial payload behind.
	Put(ctx context.Context, hash model.ContentHash, content []byte) error

	// Get returns the payload for hash, or an error wrapping ErrBlobNotFound.
	Get(ctx context.Context, hash model.ContentHash) ([]byte, error)

	// Delete removes the payload for hash, or returns an error wrapping
	// ErrBlobNotFound when it is absent.
	Delete(ctx context.Context, hash model.ContentHash) error

	// List returns every stored hash.
	List(ctx context.Context) ([]model.ContentHash, error)

	// ValidateSetup verifies that the store is reachable and writable.
	ValidateSetup(ctx context.Context) error
}

// PutContent hashes content, stores it and returns its hash.
func PutContent(ctx context.Context, store BlobStore, content []byte) (model.ContentHash, error) {
	hash := model.HashContent(content)
	if err := store.Put(ctx, hash, content); err != nil {
		return hash, fmt.Errorf("storing blob %s: %w", hash.Short(), err)
	}
	return hash, nil
}
