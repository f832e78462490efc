package fh

import (
	"context"
	"errors"

	"fh-go/internal/model"
)

// DefaultMaxSnapshots is the per-file snapshot ceiling used when none is configured.
const DefaultMaxSnapshots = 100

// RetentionPolicy bounds the number of snapshots kept per file.
type RetentionPolicy struct {
	MaxSnapshots int
}

// DefaultRetentionPolicy returns the policy with the default ceiling.
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{MaxSnapshots: DefaultMaxSnapshots}
}

func (p RetentionPolicy) ceiling() int64 {
	if p.MaxSnapshots <= 0 {
		return DefaultMaxSnapshots
	}
	return int64(p.MaxSnapshots)
}

// Excess returns how many snapshots must go for a file holding count of them.
func (p RetentionPolicy) Excess(count int64) int64 {
	if n := count - p.ceiling(); n > 0 {
		return n
	}
	return 0
}

// enforceRetention trims the file's oldest snapshots down to the ceiling and
// reclaims blobs no snapshot references anymore. Failures are logged, never
// returned: the save that triggered enforcement has already succeeded.
func (s *HistoryService) enforceRetention(ctx context.Context, fileID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.ledger.CountSnapshots(ctx, fileID)
	if err != nil {
		s.logger.Warn("retention: counting snapshots failed", "file", fileID, "error", err)
		return
	}

	excess := s.retention.Excess(count)
	if excess == 0 {
		return
	}

	deleted, err := s.ledger.DeleteOldestSnapshots(ctx, fileID, excess)
	if err != nil {
		s.logger.Warn("retention: deleting snapshots failed", "file", fileID, "error", err)
		return
	}
	s.logger.Debug("retention: snapshots rotated", "file", fileID, "deleted", len(deleted))

	hashes := make([]model.ContentHash, 0, len(deleted))
	seen := make(map[model.ContentHash]bool, len(deleted))
	for _, snap := range deleted {
		if !seen[snap.ContentHash] {
			seen[snap.ContentHash] = true
			hashes = append(hashes, snap.ContentHash)
		}
	}
	s.reclaim(ctx, hashes)
}

// reclaim deletes each blob whose hash no snapshot of any file references.
// The caller must hold the write lock and must have committed the ledger
// deletions first. Returns the number of blobs deleted.
func (s *HistoryService) reclaim(ctx context.Context, hashes []model.ContentHash) int {
	reclaimed := 0
	for _, hash := range hashes {
		refs, err := s.ledger.CountSnapshotsByContentHash(ctx, hash)
		if err != nil {
			s.logger.Warn("reclaim: counting references failed", "hash", hash.Short(), "error", err)
			continue
		}
		if refs > 0 {
			continue
		}

		if err := s.blobs.Delete(ctx, hash); err != nil {
			if errors.Is(err, ErrBlobNotFound) {
				s.logger.Warn("reclaim: blob already gone", "hash", hash.Short())
			} else {
				s.logger.Warn("reclaim: deleting blob failed", "hash", hash.Short(), "error", err)
			}
			continue
		}
		reclaimed++
	}
	if reclaimed > 0 {
		s.logger.Debug("blobs reclaimed", "count", reclaimed)
	}
	return reclaimed
}
