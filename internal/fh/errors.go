package fh

import "errors"

var (
	// ErrBlobNotFound is returned by blob stores for an unknown content hash.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrSnapshotNotFound is returned when a snapshot id does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrFileNotTracked is returned when an operation needs a tracked file
	// that has no ledger row.
	ErrFileNotTracked = errors.New("file is not tracked")

	// ErrNotText is returned by filesystem managers for files that do not
	// decode as text.
	ErrNotText = errors.New("not a text file")
)
