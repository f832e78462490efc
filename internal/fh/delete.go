package fh

import (
	"context"
	"fmt"

	"fh-go/internal/model"
)

// DeleteFileHistory removes a tracked file and all of its snapshots, then
// reclaims every blob that no other file references. The ledger rows are
// deleted in one transaction before any blob is touched. Deleting an unknown
// id is a no-op.
func (s *HistoryService) DeleteFileHistory(ctx context.Context, fileID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hashes, err := s.ledger.DeleteTrackedFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("deleting file history: %w", err)
	}

	reclaimed := s.reclaim(ctx, hashes)
	s.logger.Info("file history deleted", "file", fileID, "blobs_reclaimed", reclaimed)
	return nil
}

// SweepOrphanBlobs deletes every stored blob that no snapshot references,
// such as payloads left behind by a save that failed after its blob write.
// Returns the number of blobs deleted.
func (s *HistoryService) SweepOrphanBlobs(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.blobs.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing blobs: %w", err)
	}

	referenced, err := s.ledger.ListReferencedContentHashes(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing referenced hashes: %w", err)
	}

	live := make(map[model.ContentHash]bool, len(referenced))
	for _, h := range referenced {
		live[h] = true
	}

	var orphans []model.ContentHash
	for _, h := range stored {
		if !live[h] {
			orphans = append(orphans, h)
		}
	}

	removed := s.reclaim(ctx, orphans)
	s.logger.Info("orphan sweep complete", "stored", len(stored), "removed", removed)
	return removed, nil
}
