package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fh-go/internal/blobstore"
	"fh-go/internal/config"
	"fh-go/internal/database"
	"fh-go/internal/database/migrations"
	"fh-go/internal/database/sqlc"
	"fh-go/internal/diff"
	"fh-go/internal/fh"
	"fh-go/internal/fs"
)

// Options tune how an FHApp is assembled.
type Options struct {
	// Console receives a copy of every log record. Nil logs to the file only.
	Console io.Writer
	// Clock overrides the wall clock.
	Clock fh.Clock
}

// FHApp is the application layer between the CLI and HistoryService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and releases resources on Close.
type FHApp struct {
	cfg     *config.Config
	db      *database.SQLiteDatabase
	blobs   fh.BlobStore
	fsmgr   *fs.OSFilesystemManager
	service *fh.HistoryService
	op      *Operation
	logger  *slogAdapter
	logFile *os.File
}

// NewFHApp creates a fully wired FHApp from the given config.
// operation identifies the CLI command being run (e.g. "save", "gc").
// The caller must call Close when done.
func NewFHApp(ctx context.Context, cfg *config.Config, operation string, opts Options) (*FHApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = fh.RealClock{}
	}

	fsmgr, err := fs.NewOSFilesystemManager(cfg.Filesystem.FallbackEncoding, cfg.Filesystem.Ignore)
	if err != nil {
		return nil, fmt.Errorf("creating filesystem manager: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date (run 'fh db migrate'): %w", err)
	}

	blobs, err := blobstore.NewBlobStoreFromConfig(ctx, cfg.Blobs, db.DB())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating blob store: %w", err)
	}
	if err := blobs.ValidateSetup(ctx); err != nil {
		closeBlobs(blobs)
		db.Close()
		return nil, fmt.Errorf("blob store not usable: %w", err)
	}

	op := NewOperation(operation, clock.Now())
	l, logFile, err := newLogger(cfg.LogDir, op.ShortID(), cfg.Log.Level, opts.Console)
	if err != nil {
		closeBlobs(blobs)
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	retention := fh.RetentionPolicy{MaxSnapshots: cfg.Retention.MaxSnapshots}
	svc := fh.NewHistoryService(db, blobs, fsmgr, logger, clock, retention)

	logger.Debug("operation started", "operation", op.Name, "id", op.ID, "blobs", cfg.Blobs.Type)

	return &FHApp{
		cfg:     cfg,
		db:      db,
		blobs:   blobs,
		fsmgr:   fsmgr,
		service: svc,
		op:      op,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// track marks the operation failed when err is non-nil and passes err through.
func (a *FHApp) track(err error) error {
	if err != nil {
		a.op.Fail()
		a.logger.Error("operation failed", "operation", a.op.Name, "error", err)
	}
	return err
}

func absPath(rawPath string) (string, error) {
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return p, nil
}

// SaveContent records content as the newest version of the file at rawPath,
// as an editor does on save. Returns nil when nothing changed.
func (a *FHApp) SaveContent(ctx context.Context, rawPath string, content string) (*sqlc.Snapshot, error) {
	p, err := absPath(rawPath)
	if err != nil {
		return nil, err
	}
	snap, err := a.service.SaveSnapshot(ctx, p, content)
	return snap, a.track(err)
}

// SaveFile reads the file at rawPath and records its current content.
func (a *FHApp) SaveFile(ctx context.Context, rawPath string) (*sqlc.Snapshot, error) {
	p, err := absPath(rawPath)
	if err != nil {
		return nil, err
	}
	snap, err := a.service.SnapshotFile(ctx, p)
	return snap, a.track(err)
}

// SaveDir records every non-ignored text file under rawPath.
func (a *FHApp) SaveDir(ctx context.Context, rawPath string, recursive bool) (*fh.ScanReport, error) {
	p, err := absPath(rawPath)
	if err != nil {
		return nil, err
	}
	report, err := a.service.SnapshotDir(ctx, p, recursive)
	return report, a.track(err)
}

// Files returns every tracked file.
func (a *FHApp) Files(ctx context.Context) ([]*sqlc.File, error) {
	files, err := a.service.ListTrackedFiles(ctx)
	return files, a.track(err)
}

// History returns the snapshots of the file at rawPath, newest first.
func (a *FHApp) History(ctx context.Context, rawPath string) ([]*sqlc.Snapshot, error) {
	p, err := absPath(rawPath)
	if err != nil {
		return nil, err
	}
	snaps, err := a.service.GetHistory(ctx, p)
	return snaps, a.track(err)
}

// Show returns a snapshot and its content.
func (a *FHApp) Show(ctx context.Context, snapshotID int64) (*sqlc.Snapshot, string, error) {
	snap, err := a.service.FindSnapshot(ctx, snapshotID)
	if err != nil {
		return nil, "", a.track(err)
	}
	text, ok := a.service.GetSnapshotContent(ctx, snap.ContentHash)
	if !ok {
		return nil, "", a.track(fmt.Errorf("snapshot %d content %s: %w", snapshotID, snap.ContentHash.Short(), fh.ErrBlobNotFound))
	}
	return snap, text, nil
}

// Diff compares two snapshots.
func (a *FHApp) Diff(ctx context.Context, oldID, newID int64) diff.Result {
	return a.service.GetDiff(ctx, oldID, newID)
}

// SnapshotDiff compares a snapshot with its parent.
func (a *FHApp) SnapshotDiff(ctx context.Context, snapshotID int64) (diff.Result, error) {
	d, err := a.service.GetSnapshotDiff(ctx, snapshotID)
	return d, a.track(err)
}

// Forget deletes the whole history of the file at rawPath.
func (a *FHApp) Forget(ctx context.Context, rawPath string) error {
	p, err := absPath(rawPath)
	if err != nil {
		return err
	}
	file, err := a.db.FindTrackedFileByPath(ctx, p)
	if err != nil {
		return a.track(err)
	}
	if file == nil {
		return a.track(fmt.Errorf("%s: %w", p, fh.ErrFileNotTracked))
	}
	return a.track(a.service.DeleteFileHistory(ctx, file.ID))
}

// Refresh re-checks which tracked files still exist on disk.
func (a *FHApp) Refresh(ctx context.Context) (*fh.LivenessReport, error) {
	report, err := a.service.RefreshLiveness(ctx)
	return report, a.track(err)
}

// Restore writes a snapshot back to disk. An empty rawDest restores over the
// tracked file itself. Returns the path written.
func (a *FHApp) Restore(ctx context.Context, snapshotID int64, rawDest string) (string, error) {
	dest := ""
	if rawDest != "" {
		p, err := absPath(rawDest)
		if err != nil {
			return "", err
		}
		dest = p
	}
	written, err := a.service.Restore(ctx, snapshotID, dest)
	return written, a.track(err)
}

// GC removes blobs that no snapshot references.
func (a *FHApp) GC(ctx context.Context) (int, error) {
	n, err := a.service.SweepOrphanBlobs(ctx)
	return n, a.track(err)
}

// Close logs the operation outcome and closes all resources.
func (a *FHApp) Close() error {
	var firstErr error

	a.logger.Debug("operation finished", "operation", a.op.Name, "status", a.op.Status)

	if err := closeBlobs(a.blobs); err != nil {
		firstErr = fmt.Errorf("closing blob store: %w", err)
	}
	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

func closeBlobs(blobs fh.BlobStore) error {
	if c, ok := blobs.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// MigrateDatabase opens the configured database and applies pending migrations.
func MigrateDatabase(cfg *config.Config) (migrations.Status, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return migrations.Status{}, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return migrations.Status{}, fmt.Errorf("migrating database: %w", err)
	}
	return migrations.ReadStatus(db.DB())
}

// DatabaseStatus reports the schema version of the configured database.
func DatabaseStatus(cfg *config.Config) (migrations.Status, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return migrations.Status{}, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return migrations.ReadStatus(db.DB())
}

// BackupDatabase writes a consistent copy of the configured database to dest.
func BackupDatabase(ctx context.Context, cfg *config.Config, dest string) error {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	p, err := absPath(dest)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err == nil {
		return fmt.Errorf("backup destination already exists: %s", p)
	}
	return db.BackupTo(ctx, p)
}
