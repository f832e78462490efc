package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fh-go/internal/database/migrations"
	"fh-go/internal/database/sqlc"
	"fh-go/internal/fh"
	"fh-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the snapshot ledger using SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		path:    path,
	}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
	}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: every :memory: connection is a separate database, and
	// SQLite allows a single writer anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Tracked files

func (s *SQLiteDatabase) FindTrackedFileByPath(ctx context.Context, path string) (*sqlc.File, error) {
	file, err := s.queries.GetFileByPath(ctx, path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding file by path: %w", err)
	}
	return &file, nil
}

func (s *SQLiteDatabase) FindTrackedFileByID(ctx context.Context, id int64) (*sqlc.File, error) {
	file, err := s.queries.GetFileByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding file by id: %w", err)
	}
	return &file, nil
}

// EnsureTrackedFile returns the file row for path, creating an alive one if
// the path has never been tracked.
func (s *SQLiteDatabase) EnsureTrackedFile(ctx context.Context, path string, now time.Time) (*sqlc.File, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	file, err := ensureFile(ctx, s.queries.WithTx(tx), path, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return file, nil
}

func ensureFile(ctx context.Context, qtx *sqlc.Queries, path string, now time.Time) (*sqlc.File, error) {
	file, err := qtx.GetFileByPath(ctx, path)
	if errors.Is(err, sql.ErrNoRows) {
		file, err = qtx.InsertFile(ctx, sqlc.InsertFileParams{
			Path:      path,
			IsAlive:   true,
			CreatedAt: now,
		})
		if err != nil {
			return nil, fmt.Errorf("creating file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("finding file: %w", err)
	}
	return &file, nil
}

func (s *SQLiteDatabase) ListTrackedFiles(ctx context.Context) ([]*sqlc.File, error) {
	files, err := s.queries.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	result := make([]*sqlc.File, len(files))
	for i := range files {
		result[i] = &files[i]
	}
	return result, nil
}

func (s *SQLiteDatabase) MarkFileLost(ctx context.Context, fileID int64, at time.Time) error {
	err := s.queries.MarkFileLost(ctx, sqlc.MarkFileLostParams{
		LostAt:    sql.NullTime{Time: at, Valid: true},
		UpdatedAt: sql.NullTime{Time: at, Valid: true},
		ID:        fileID,
	})
	if err != nil {
		return fmt.Errorf("marking file lost: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) MarkFileAlive(ctx context.Context, fileID int64, at time.Time) error {
	err := s.queries.MarkFileAlive(ctx, sqlc.MarkFileAliveParams{
		UpdatedAt: sql.NullTime{Time: at, Valid: true},
		ID:        fileID,
	})
	if err != nil {
		return fmt.Errorf("marking file alive: %w", err)
	}
	return nil
}

// DeleteTrackedFile removes every snapshot of the file and the file row in a
// single transaction. It returns the distinct content hashes the removed
// snapshots referenced. Deleting an unknown id is not an error.
func (s *SQLiteDatabase) DeleteTrackedFile(ctx context.Context, fileID int64) ([]model.ContentHash, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	hashes, err := qtx.ListDistinctContentHashesByFileID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("listing content hashes: %w", err)
	}
	if err := qtx.DeleteSnapshotsByFileID(ctx, fileID); err != nil {
		return nil, fmt.Errorf("deleting snapshots: %w", err)
	}
	if err := qtx.DeleteFileByID(ctx, fileID); err != nil {
		return nil, fmt.Errorf("deleting file: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return hashes, nil
}

// Snapshots

// HeadSnapshot returns the most recent snapshot of the file, or nil if the
// file has never been snapshotted.
func (s *SQLiteDatabase) HeadSnapshot(ctx context.Context, fileID int64) (*sqlc.Snapshot, error) {
	snap, err := s.queries.GetHeadSnapshot(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding head snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SQLiteDatabase) FindSnapshotByID(ctx context.Context, id int64) (*sqlc.Snapshot, error) {
	snap, err := s.queries.GetSnapshotByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding snapshot by id: %w", err)
	}
	return &snap, nil
}

// AppendSnapshot inserts a snapshot with an explicit parent. The change delta
// is computed against the parent's character count.
func (s *SQLiteDatabase) AppendSnapshot(ctx context.Context, fileID int64, hash model.ContentHash, charCount int64, parentID sql.NullInt64, createdAt time.Time) (*sqlc.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	var parent *sqlc.Snapshot
	if parentID.Valid {
		p, err := qtx.GetSnapshotByID(ctx, parentID.Int64)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("parent snapshot %d: %w", parentID.Int64, fh.ErrSnapshotNotFound)
			}
			return nil, fmt.Errorf("loading parent snapshot: %w", err)
		}
		parent = &p
	}

	created, err := insertSnapshot(ctx, qtx, fileID, hash, charCount, parent, createdAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return created, nil
}

// RecordSnapshot atomically records a save in a single transaction:
//  1. Finds or creates the file record for path.
//  2. Loads the file's head snapshot. If its hash equals hash, nothing
//     changed and nil is returned.
//  3. Otherwise appends a snapshot whose parent is the head.
func (s *SQLiteDatabase) RecordSnapshot(ctx context.Context, path string, hash model.ContentHash, charCount int64, createdAt time.Time) (*sqlc.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	file, err := ensureFile(ctx, qtx, path, createdAt)
	if err != nil {
		return nil, err
	}

	var head *sqlc.Snapshot
	h, err := qtx.GetHeadSnapshot(ctx, file.ID)
	switch {
	case err == nil:
		head = &h
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("loading head snapshot: %w", err)
	}

	if head != nil && head.ContentHash == hash {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("committing transaction: %w", err)
		}
		return nil, nil
	}

	created, err := insertSnapshot(ctx, qtx, file.ID, hash, charCount, head, createdAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return created, nil
}

func insertSnapshot(ctx context.Context, qtx *sqlc.Queries, fileID int64, hash model.ContentHash, charCount int64, parent *sqlc.Snapshot, createdAt time.Time) (*sqlc.Snapshot, error) {
	params := sqlc.InsertSnapshotParams{
		FileID:      fileID,
		ContentHash: hash,
		CharCount:   charCount,
		ChangeDelta: charCount,
		CreatedAt:   createdAt,
	}
	if parent != nil {
		params.ParentID = sql.NullInt64{Int64: parent.ID, Valid: true}
		params.ChangeDelta = charCount - parent.CharCount
	}

	created, err := qtx.InsertSnapshot(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot: %w", err)
	}
	return &created, nil
}

// ListSnapshots returns the file's snapshots, newest first.
func (s *SQLiteDatabase) ListSnapshots(ctx context.Context, fileID int64) ([]*sqlc.Snapshot, error) {
	snaps, err := s.queries.ListSnapshotsByFileID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	result := make([]*sqlc.Snapshot, len(snaps))
	for i := range snaps {
		result[i] = &snaps[i]
	}
	return result, nil
}

func (s *SQLiteDatabase) CountSnapshots(ctx context.Context, fileID int64) (int64, error) {
	n, err := s.queries.CountSnapshotsByFileID(ctx, fileID)
	if err != nil {
		return 0, fmt.Errorf("counting snapshots: %w", err)
	}
	return n, nil
}

// DeleteOldestSnapshots deletes the file's n oldest snapshots in one
// transaction and returns the deleted rows.
func (s *SQLiteDatabase) DeleteOldestSnapshots(ctx context.Context, fileID int64, n int64) ([]*sqlc.Snapshot, error) {
	if n <= 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	oldest, err := qtx.ListOldestSnapshotsByFileID(ctx, sqlc.ListOldestSnapshotsByFileIDParams{
		FileID: fileID,
		Limit:  n,
	})
	if err != nil {
		return nil, fmt.Errorf("listing oldest snapshots: %w", err)
	}

	deleted := make([]*sqlc.Snapshot, len(oldest))
	for i := range oldest {
		if err := qtx.DeleteSnapshotByID(ctx, oldest[i].ID); err != nil {
			return nil, fmt.Errorf("deleting snapshot %d: %w", oldest[i].ID, err)
		}
		deleted[i] = &oldest[i]
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return deleted, nil
}

// DeleteSnapshots deletes every snapshot of the file, keeping the file row.
// It returns the distinct content hashes the deleted snapshots referenced.
func (s *SQLiteDatabase) DeleteSnapshots(ctx context.Context, fileID int64) ([]model.ContentHash, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	hashes, err := qtx.ListDistinctContentHashesByFileID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("listing content hashes: %w", err)
	}
	if err := qtx.DeleteSnapshotsByFileID(ctx, fileID); err != nil {
		return nil, fmt.Errorf("deleting snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return hashes, nil
}

// Content references

// CountSnapshotsByContentHash counts snapshots of any file referencing hash.
func (s *SQLiteDatabase) CountSnapshotsByContentHash(ctx context.Context, hash model.ContentHash) (int64, error) {
	n, err := s.queries.CountSnapshotsByContentHash(ctx, hash)
	if err != nil {
		return 0, fmt.Errorf("counting content references: %w", err)
	}
	return n, nil
}

func (s *SQLiteDatabase) ListReferencedContentHashes(ctx context.Context) ([]model.ContentHash, error) {
	hashes, err := s.queries.ListReferencedContentHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing referenced content hashes: %w", err)
	}
	return hashes, nil
}

// DB returns the underlying connection, shared with the sqlite blob store.
func (s *SQLiteDatabase) DB() *sql.DB {
	return s.db
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Migrate brings the schema up to the latest version.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(ctx context.Context, destPath string) error {
	_, err := s.db.ExecContext(ctx, "VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements fh.Ledger interface
var _ fh.Ledger = (*SQLiteDatabase)(nil)
