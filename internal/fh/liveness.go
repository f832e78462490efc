package fh

import (
	"context"
	"fmt"
)

// LivenessReport summarises one liveness sweep.
type LivenessReport struct {
	Checked   int
	Lost      int // files newly marked lost
	Revived   int // files newly marked alive
	Ambiguous int // existence could not be determined; state left unchanged
	Failed    int // state change could not be persisted
}

// RefreshLiveness checks every tracked file against the filesystem. A file
// that disappeared is marked lost with the sweep time; a lost file that
// reappeared is marked alive and its lost time cleared. Files whose
// existence check errors keep their state. No snapshots are created.
func (s *HistoryService) RefreshLiveness(ctx context.Context) (*LivenessReport, error) {
	files, err := s.ledger.ListTrackedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tracked files: %w", err)
	}

	now := s.clock.Now().UTC()
	report := &LivenessReport{}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		exists, err := s.fsmgr.Exists(file.Path)
		if err != nil {
			report.Ambiguous++
			s.logger.Warn("liveness check failed", "path", file.Path, "error", err)
			continue
		}

		switch {
		case exists && !file.IsAlive:
			if err := s.ledger.MarkFileAlive(ctx, file.ID, now); err != nil {
				report.Failed++
				s.logger.Warn("marking file alive failed", "path", file.Path, "error", err)
				continue
			}
			report.Revived++
			s.logger.Info("file revived", "path", file.Path)
		case !exists && file.IsAlive:
			if err := s.ledger.MarkFileLost(ctx, file.ID, now); err != nil {
				report.Failed++
				s.logger.Warn("marking file lost failed", "path", file.Path, "error", err)
				continue
			}
			report.Lost++
			s.logger.Info("file lost", "path", file.Path)
		}
	}

	s.logger.Debug("liveness refreshed",
		"checked", report.Checked,
		"lost", report.Lost,
		"revived", report.Revived,
		"ambiguous", report.Ambiguous)
	return report, nil
}
