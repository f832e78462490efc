package fh

import (
	"context"
	"errors"
	"fmt"
)

// ScanReport summarises a directory snapshot.
type ScanReport struct {
	Saved     int
	Unchanged int
	Skipped   int // not text
	Failed    int
}

// SnapshotDir saves every non-ignored file under dir. Files that are not
// text are skipped; other per-file failures are logged and counted so one bad
// file does not stop the scan.
func (s *HistoryService) SnapshotDir(ctx context.Context, dir string, recursive bool) (*ScanReport, error) {
	paths, err := s.fsmgr.FindFiles(dir, recursive)
	if err != nil {
		return nil, fmt.Errorf("finding files in %s: %w", dir, err)
	}

	report := &ScanReport{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		snap, err := s.SnapshotFile(ctx, path)
		switch {
		case errors.Is(err, ErrNotText):
			report.Skipped++
			s.logger.Debug("skipping non-text file", "path", path)
		case err != nil:
			report.Failed++
			s.logger.Warn("snapshot failed", "path", path, "error", err)
		case snap == nil:
			report.Unchanged++
		default:
			report.Saved++
		}
	}

	s.logger.Info("directory scanned",
		"dir", dir,
		"saved", report.Saved,
		"unchanged", report.Unchanged,
		"skipped", report.Skipped,
		"failed", report.Failed)
	return report, nil
}
