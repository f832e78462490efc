package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fh-go/internal/database/sqlc"
	"fh-go/internal/fh"
	"fh-go/internal/model"
)

// SQLiteStore keeps payloads in the blobs table of the ledger database, so a
// whole history lives in one file.
type SQLiteStore struct {
	queries *sqlc.Queries
	now     func() time.Time
}

// NewSQLiteStore creates a store on db. The blobs table must already exist.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		queries: sqlc.New(db),
		now:     time.Now,
	}
}

// Put inserts the payload; an existing row for hash is left untouched.
// The insert is a single statement, so it is atomic.
func (s *SQLiteStore) Put(ctx context.Context, hash model.ContentHash, content []byte) error {
	if content == nil {
		content = []byte{}
	}
	err := s.queries.InsertBlob(ctx, sqlc.InsertBlobParams{
		ContentHash: hash,
		Content:     content,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("inserting blob %s: %w", hash.Short(), err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, hash model.ContentHash) ([]byte, error) {
	blob, err := s.queries.GetBlob(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", hash.Short(), fh.ErrBlobNotFound)
		}
		return nil, fmt.Errorf("reading blob %s: %w", hash.Short(), err)
	}
	if blob.Content == nil {
		return []byte{}, nil
	}
	return blob.Content, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, hash model.ContentHash) error {
	n, err := s.queries.DeleteBlob(ctx, hash)
	if err != nil {
		return fmt.Errorf("deleting blob %s: %w", hash.Short(), err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", hash.Short(), fh.ErrBlobNotFound)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]model.ContentHash, error) {
	hashes, err := s.queries.ListBlobHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}
	return hashes, nil
}

// ValidateSetup verifies that the blobs table is queryable.
func (s *SQLiteStore) ValidateSetup(ctx context.Context) error {
	if _, err := s.queries.ListBlobHashes(ctx); err != nil {
		return fmt.Errorf("blobs table not accessible: %w", err)
	}
	return nil
}

// Compile-time check that SQLiteStore implements fh.BlobStore interface
var _ fh.BlobStore = (*SQLiteStore)(nil)
