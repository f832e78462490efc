package blobstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fh-go/internal/fh"
	"fh-go/internal/model"
)

// MemoryStore is an in-memory implementation of the BlobStore interface.
// It is useful for testing and for ephemeral sessions.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	blobs map[model.ContentHash][]byte
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[model.ContentHash][]byte),
	}
}

// Put stores a copy of content under hash. Existing hashes are left untouched.
func (m *MemoryStore) Put(ctx context.Context, hash model.ContentHash, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[hash]; ok {
		return nil
	}
	m.blobs[hash] = append([]byte(nil), content...)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, hash model.ContentHash) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[hash]
	if !ok {
		return nil, fmt.Errorf("%s: %w", hash.Short(), fh.ErrBlobNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Delete(ctx context.Context, hash model.ContentHash) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[hash]; !ok {
		return fmt.Errorf("%s: %w", hash.Short(), fh.ErrBlobNotFound)
	}
	delete(m.blobs, hash)
	return nil
}

// List returns the stored hashes in ascending order.
func (m *MemoryStore) List(ctx context.Context) ([]model.ContentHash, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hashes := make([]model.ContentHash, 0, len(m.blobs))
	for h := range m.blobs {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].String() < hashes[j].String()
	})
	return hashes, nil
}

// Len returns the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryStore) ValidateSetup(ctx context.Context) error {
	return nil
}

// Compile-time check that MemoryStore implements fh.BlobStore interface
var _ fh.BlobStore = (*MemoryStore)(nil)
