package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fh-go/internal/fh"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It performs actual filesystem operations using the os package.
type OSFilesystemManager struct {
	fallback fh.Encoding
	ignore   []string
}

// NewOSFilesystemManager creates a filesystem manager that decodes non-UTF-8
// files with fallback and skips files matching ignore during scans.
func NewOSFilesystemManager(fallback string, ignore []string) (*OSFilesystemManager, error) {
	enc := fh.Encoding(strings.ToLower(fallback))
	if enc == "" {
		enc = fh.EncodingShiftJIS
	}
	if _, err := lookupEncoding(enc); err != nil {
		return nil, fmt.Errorf("fallback encoding: %w", err)
	}
	return &OSFilesystemManager{fallback: enc, ignore: ignore}, nil
}

// Exists reports whether path is a regular file. A directory or other special
// file at path counts as missing.
func (m *OSFilesystemManager) Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

func (m *OSFilesystemManager) ReadText(path string) (string, fh.Encoding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}

	text, enc, err := detect(data, m.fallback)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", path, err)
	}
	return text, enc, nil
}

func (m *OSFilesystemManager) DetectEncoding(path string) (fh.Encoding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	_, enc, err := detect(data, m.fallback)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return enc, nil
}

// WriteText encodes text and replaces path atomically, keeping the mode of
// an existing file. Parent directories are created as needed.
func (m *OSFilesystemManager) WriteText(path string, text string, enc fh.Encoding) error {
	data, err := encode(text, enc)
	if err != nil {
		return err
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".fh-restore-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// FindFiles discovers regular files under dir, skipping anything matched by
// the configured ignore patterns or the directory's .fhignore file. Ignored
// directories are not descended into.
func (m *OSFilesystemManager) FindFiles(dir string, recursive bool) ([]string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	fromFile, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	patterns := append(append(append([]string{}, defaultIgnorePatterns...), m.ignore...), fromFile...)
	matcher := NewIgnoreMatcher(patterns)

	var paths []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive || matcher.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || matcher.Match(rel, false) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Compile-time check that OSFilesystemManager implements fh.FilesystemManager interface
var _ fh.FilesystemManager = (*OSFilesystemManager)(nil)
