package fh

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fh-go/internal/database/sqlc"
	"fh-go/internal/model"
)

// HistoryService is the facade the editor talks to. It records saves as
// snapshots, answers history and diff queries, tracks file liveness and
// reclaims storage.
//
// Saves of different files may run concurrently. Reclamation (retention,
// history deletion, orphan sweeps) holds an exclusive lock so a blob can
// never be deleted between another save's Put and its ledger insert.
type HistoryService struct {
	ledger    Ledger
	blobs     BlobStore
	fsmgr     FilesystemManager
	logger    Logger
	clock     Clock
	retention RetentionPolicy

	mu sync.RWMutex
}

// NewHistoryService creates a HistoryService with the provided dependencies.
func NewHistoryService(ledger Ledger, blobs BlobStore, fsmgr FilesystemManager, logger Logger, clock Clock, retention RetentionPolicy) *HistoryService {
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &HistoryService{
		ledger:    ledger,
		blobs:     blobs,
		fsmgr:     fsmgr,
		logger:    logger,
		clock:     clock,
		retention: retention,
	}
}

// SaveSnapshot records content as the newest version of path.
//
// It returns nil when content is identical to the file's head snapshot.
// Otherwise the payload is stored (deduplicated across all files), a
// snapshot parented on the previous head is appended, and the file's
// retention ceiling is enforced. Saving never changes the file's liveness.
func (s *HistoryService) SaveSnapshot(ctx context.Context, path string, content string) (*sqlc.Snapshot, error) {
	snap, err := s.record(ctx, path, content)
	if err != nil {
		return nil, fmt.Errorf("recording snapshot: %w", err)
	}
	if snap == nil {
		s.logger.Debug("content unchanged", "path", path)
		return nil, nil
	}

	s.logger.Info("snapshot saved",
		"path", path,
		"snapshot", snap.ID,
		"hash", snap.ContentHash.Short(),
		"delta", snap.ChangeDelta)

	s.enforceRetention(ctx, snap.FileID)
	return snap, nil
}

// record stores the blob and appends the ledger row under the shared lock.
//
// The blob is written before the ledger row. If the ledger write fails the
// worst outcome is an orphaned blob, which the next sweep removes.
func (s *HistoryService) record(ctx context.Context, path string, content string) (*sqlc.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hash := model.HashText(content)

	unchanged, err := s.matchesHead(ctx, path, hash)
	if err != nil {
		return nil, err
	}
	if unchanged {
		return nil, nil
	}

	if err := s.blobs.Put(ctx, hash, []byte(content)); err != nil {
		return nil, fmt.Errorf("storing blob: %w", err)
	}

	charCount := model.CharCount(content)
	snap, err := s.ledger.RecordSnapshot(ctx, path, hash, charCount, s.clock.Now().UTC())
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// matchesHead reports whether hash equals the head snapshot of path, so an
// unchanged save skips the blob write entirely.
func (s *HistoryService) matchesHead(ctx context.Context, path string, hash model.ContentHash) (bool, error) {
	file, err := s.ledger.FindTrackedFileByPath(ctx, path)
	if err != nil {
		return false, err
	}
	if file == nil {
		return false, nil
	}

	head, err := s.ledger.HeadSnapshot(ctx, file.ID)
	if err != nil {
		return false, err
	}
	return head != nil && head.ContentHash == hash, nil
}

// SnapshotFile reads path through the filesystem manager and saves its
// decoded text, like an editor save would.
func (s *HistoryService) SnapshotFile(ctx context.Context, path string) (*sqlc.Snapshot, error) {
	text, enc, err := s.fsmgr.ReadText(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	s.logger.Debug("file read", "path", path, "encoding", string(enc))
	return s.SaveSnapshot(ctx, path, text)
}

// GetHistory returns the snapshots of path, newest first. A path that was
// never tracked has an empty history.
func (s *HistoryService) GetHistory(ctx context.Context, path string) ([]*sqlc.Snapshot, error) {
	file, err := s.ledger.FindTrackedFileByPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("finding file: %w", err)
	}
	if file == nil {
		return []*sqlc.Snapshot{}, nil
	}

	snaps, err := s.ledger.ListSnapshots(ctx, file.ID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return snaps, nil
}

// GetSnapshotContent returns the text stored under hash. The boolean is
// false when the blob is missing or unreadable.
func (s *HistoryService) GetSnapshotContent(ctx context.Context, hash model.ContentHash) (string, bool) {
	data, err := s.blobs.Get(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			s.logger.Debug("blob not found", "hash", hash.Short())
		} else {
			s.logger.Warn("reading blob failed", "hash", hash.Short(), "error", err)
		}
		return "", false
	}
	return string(data), true
}

// ListTrackedFiles returns every tracked file, alive or lost, ordered by path.
func (s *HistoryService) ListTrackedFiles(ctx context.Context) ([]*sqlc.File, error) {
	files, err := s.ledger.ListTrackedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tracked files: %w", err)
	}
	return files, nil
}

// FindSnapshot returns the snapshot with id, or an error wrapping
// ErrSnapshotNotFound.
func (s *HistoryService) FindSnapshot(ctx context.Context, id int64) (*sqlc.Snapshot, error) {
	snap, err := s.ledger.FindSnapshotByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding snapshot: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("snapshot %d: %w", id, ErrSnapshotNotFound)
	}
	return snap, nil
}
