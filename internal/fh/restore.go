package fh

import (
	"context"
	"fmt"
)

// Restore writes the content of a snapshot to destPath, or back to the
// tracked file's own path when destPath is empty. When the destination
// already exists its encoding is kept; new files are written as UTF-8.
// Restoring does not record a snapshot: the next save does.
func (s *HistoryService) Restore(ctx context.Context, snapshotID int64, destPath string) (string, error) {
	snap, err := s.FindSnapshot(ctx, snapshotID)
	if err != nil {
		return "", err
	}

	if destPath == "" {
		file, err := s.ledger.FindTrackedFileByID(ctx, snap.FileID)
		if err != nil {
			return "", fmt.Errorf("finding file: %w", err)
		}
		if file == nil {
			return "", fmt.Errorf("snapshot %d: %w", snapshotID, ErrFileNotTracked)
		}
		destPath = file.Path
	}

	data, err := s.blobs.Get(ctx, snap.ContentHash)
	if err != nil {
		return "", fmt.Errorf("retrieving content %s: %w", snap.ContentHash.Short(), err)
	}

	enc := EncodingUTF8
	exists, err := s.fsmgr.Exists(destPath)
	if err != nil {
		return "", fmt.Errorf("checking destination: %w", err)
	}
	if exists {
		enc, err = s.fsmgr.DetectEncoding(destPath)
		if err != nil {
			return "", fmt.Errorf("detecting encoding: %w", err)
		}
	}

	if err := s.fsmgr.WriteText(destPath, string(data), enc); err != nil {
		return "", fmt.Errorf("writing %s: %w", destPath, err)
	}

	s.logger.Info("snapshot restored", "snapshot", snapshotID, "path", destPath, "encoding", string(enc))
	return destPath, nil
}
