package fh

import (
	"context"
	"database/sql"
	"time"

	"fh-go/internal/database/sqlc"
	"fh-go/internal/model"
)

// Ledger is the persistent record of tracked files and their snapshots.
// Lookups return nil, nil when the row does not exist. Every multi-step
// mutation runs in a single transaction.
type Ledger interface {
	// Tracked files

	// EnsureTrackedFile returns the file row for path, creating an alive one
	// stamped with now if the path was never tracked.
	EnsureTrackedFile(ctx context.Context, path string, now time.Time) (*sqlc.File, error)

	FindTrackedFileByPath(ctx context.Context, path string) (*sqlc.File, error)
	FindTrackedFileByID(ctx context.Context, id int64) (*sqlc.File, error)

	// ListTrackedFiles returns every tracked file ordered by path.
	ListTrackedFiles(ctx context.Context) ([]*sqlc.File, error)

	MarkFileLost(ctx context.Context, fileID int64, at time.Time) error
	MarkFileAlive(ctx context.Context, fileID int64, at time.Time) error

	// DeleteTrackedFile removes the file row and all its snapshots, returning
	// the distinct content hashes they referenced.
	DeleteTrackedFile(ctx context.Context, fileID int64) ([]model.ContentHash, error)

	// Snapshots

	// HeadSnapshot returns the newest snapshot of the file, or nil.
	HeadSnapshot(ctx context.Context, fileID int64) (*sqlc.Snapshot, error)

	FindSnapshotByID(ctx context.Context, id int64) (*sqlc.Snapshot, error)

	// AppendSnapshot inserts a snapshot under an explicit parent, deriving the
	// change delta from the parent's character count.
	AppendSnapshot(ctx context.Context, fileID int64, hash model.ContentHash, charCount int64, parentID sql.NullInt64, createdAt time.Time) (*sqlc.Snapshot, error)

	// RecordSnapshot ensures the file row, compares hash with the head and
	// appends a snapshot parented on the head. It returns nil when hash equals
	// the head's hash.
	RecordSnapshot(ctx context.Context, path string, hash model.ContentHash, charCount int64, createdAt time.Time) (*sqlc.Snapshot, error)

	// ListSnapshots returns the file's snapshots, newest first.
	ListSnapshots(ctx context.Context, fileID int64) ([]*sqlc.Snapshot, error)

	CountSnapshots(ctx context.Context, fileID int64) (int64, error)

	// DeleteOldestSnapshots deletes the n oldest snapshots of the file and
	// returns the deleted rows.
	DeleteOldestSnapshots(ctx context.Context, fileID int64, n int64) ([]*sqlc.Snapshot, error)

	// DeleteSnapshots deletes all snapshots of the file, keeping the file row.
	DeleteSnapshots(ctx context.Context, fileID int64) ([]model.ContentHash, error)

	// Content references

	// CountSnapshotsByContentHash counts snapshots of any file that reference hash.
	CountSnapshotsByContentHash(ctx context.Context, hash model.ContentHash) (int64, error)

	// ListReferencedContentHashes returns every hash referenced by at least one snapshot.
	ListReferencedContentHashes(ctx context.Context) ([]model.ContentHash, error)

	// CheckMigrations verifies the schema is up to date.
	CheckMigrations() error

	Close() error
}
