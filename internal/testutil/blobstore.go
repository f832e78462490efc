package testutil

import (
	"context"
	"sync"

	"fh-go/internal/blobstore"
	"fh-go/internal/fh"
	"fh-go/internal/model"
)

// FaultyBlobStore wraps a MemoryStore and fails Put or Delete on demand.
type FaultyBlobStore struct {
	*blobstore.MemoryStore

	mu        sync.Mutex
	putErr    error
	deleteErr error
	puts      int
	deletes   int
}

// NewFaultyBlobStore creates a FaultyBlobStore that initially behaves like
// a plain MemoryStore.
func NewFaultyBlobStore() *FaultyBlobStore {
	return &FaultyBlobStore{MemoryStore: blobstore.NewMemoryStore()}
}

// FailPuts makes every subsequent Put return err. nil restores normal behavior.
func (s *FaultyBlobStore) FailPuts(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putErr = err
}

// FailDeletes makes every subsequent Delete return err. nil restores normal behavior.
func (s *FaultyBlobStore) FailDeletes(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
}

func (s *FaultyBlobStore) Put(ctx context.Context, hash model.ContentHash, content []byte) error {
	s.mu.Lock()
	s.puts++
	err := s.putErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryStore.Put(ctx, hash, content)
}

func (s *FaultyBlobStore) Delete(ctx context.Context, hash model.ContentHash) error {
	s.mu.Lock()
	s.deletes++
	err := s.deleteErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryStore.Delete(ctx, hash)
}

// Puts returns how many times Put was called.
func (s *FaultyBlobStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// Deletes returns how many times Delete was called.
func (s *FaultyBlobStore) Deletes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes
}

// Compile-time check
var _ fh.BlobStore = (*FaultyBlobStore)(nil)
