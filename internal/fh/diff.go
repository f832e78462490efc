package fh

import (
	"context"

	"fh-go/internal/database/sqlc"
	"fh-go/internal/diff"
)

// GetDiff compares two snapshots line by line. A snapshot or payload that
// cannot be found on either side counts as empty content.
func (s *HistoryService) GetDiff(ctx context.Context, oldID, newID int64) diff.Result {
	oldText := s.snapshotText(ctx, oldID)
	newText := s.snapshotText(ctx, newID)
	return diff.Lines(oldText, newText)
}

// GetSnapshotDiff compares a snapshot with its parent. A snapshot without a
// parent, or whose parent was rotated away, diffs as its whole content added.
func (s *HistoryService) GetSnapshotDiff(ctx context.Context, id int64) (diff.Result, error) {
	snap, err := s.FindSnapshot(ctx, id)
	if err != nil {
		return diff.Result{}, err
	}

	newText := s.contentOf(ctx, snap)
	if !snap.ParentID.Valid {
		return diff.Whole(newText), nil
	}
	return diff.Lines(s.snapshotText(ctx, snap.ParentID.Int64), newText), nil
}

func (s *HistoryService) snapshotText(ctx context.Context, id int64) string {
	snap, err := s.ledger.FindSnapshotByID(ctx, id)
	if err != nil {
		s.logger.Warn("loading snapshot failed", "snapshot", id, "error", err)
		return ""
	}
	if snap == nil {
		s.logger.Debug("snapshot not found", "snapshot", id)
		return ""
	}
	return s.contentOf(ctx, snap)
}

func (s *HistoryService) contentOf(ctx context.Context, snap *sqlc.Snapshot) string {
	text, _ := s.GetSnapshotContent(ctx, snap.ContentHash)
	return text
}
