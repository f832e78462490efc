package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"fh-go/internal/fh"
	"fh-go/internal/model"
)

const (
	zstdSuffix = ".zst"
	tempPrefix = ".tmp-"
)

// FileSystemStore is a filesystem-based implementation of the BlobStore interface.
// Payloads are sharded by the first byte of their hash:
//
//	<root>/
//	  blobs/
//	    <hh>/
//	      <hash>        (plain payload)
//	      <hash>.zst    (zstd-compressed payload)
//
// Both forms are readable regardless of the compress setting, so toggling it
// never strands existing blobs.
type FileSystemStore struct {
	root     string
	blobsDir string
	compress bool
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
}

// NewFileSystemStore creates a filesystem blob store rooted at the given path
// and removes temp files left behind by interrupted writes.
func NewFileSystemStore(root string, compress bool) (*FileSystemStore, error) {
	blobsDir := filepath.Join(root, "blobs")
	if err := os.MkdirAll(blobsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blobs directory: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	s := &FileSystemStore{
		root:     root,
		blobsDir: blobsDir,
		compress: compress,
		encoder:  encoder,
		decoder:  decoder,
	}
	if _, err := s.cleanupTemp(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *FileSystemStore) shardDir(hash model.ContentHash) string {
	return filepath.Join(s.blobsDir, hash.String()[:2])
}

func (s *FileSystemStore) plainPath(hash model.ContentHash) string {
	return filepath.Join(s.shardDir(hash), hash.String())
}

func (s *FileSystemStore) compressedPath(hash model.ContentHash) string {
	return s.plainPath(hash) + zstdSuffix
}

// locate returns the path of the stored payload and whether it is compressed.
// An empty path means the blob does not exist.
func (s *FileSystemStore) locate(hash model.ContentHash) (string, bool, error) {
	for _, candidate := range []struct {
		path       string
		compressed bool
	}{
		{s.compressedPath(hash), true},
		{s.plainPath(hash), false},
	} {
		_, err := os.Stat(candidate.path)
		if err == nil {
			return candidate.path, candidate.compressed, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", false, fmt.Errorf("stat blob: %w", err)
		}
	}
	return "", false, nil
}

// Put stores content under hash. The operation is idempotent: storing the
// same hash multiple times is safe.
func (s *FileSystemStore) Put(ctx context.Context, hash model.ContentHash, content []byte) error {
	existing, _, err := s.locate(hash)
	if err != nil {
		return err
	}
	if existing != "" {
		return nil
	}

	if err := os.MkdirAll(s.shardDir(hash), 0755); err != nil {
		return fmt.Errorf("failed to create shard directory: %w", err)
	}

	// Empty payloads are always stored plain.
	destPath, data := s.plainPath(hash), content
	if s.compress && len(content) > 0 {
		destPath, data = s.compressedPath(hash), s.encoder.EncodeAll(content, nil)
	}
	return writeFileAtomic(destPath, data)
}

func (s *FileSystemStore) Get(ctx context.Context, hash model.ContentHash) ([]byte, error) {
	path, compressed, err := s.locate(hash)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("%s: %w", hash.Short(), fh.ErrBlobNotFound)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", hash.Short(), fh.ErrBlobNotFound)
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	if compressed {
		data, err = s.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing blob %s: %w", hash.Short(), err)
		}
	}
	return data, nil
}

func (s *FileSystemStore) Delete(ctx context.Context, hash model.ContentHash) error {
	path, _, err := s.locate(hash)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("%s: %w", hash.Short(), fh.ErrBlobNotFound)
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", hash.Short(), fh.ErrBlobNotFound)
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// List walks the shard directories and returns every stored hash.
// Files that are not blobs are skipped.
func (s *FileSystemStore) List(ctx context.Context) ([]model.ContentHash, error) {
	var hashes []model.ContentHash
	err := filepath.WalkDir(s.blobsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}
		h, err := model.ParseContentHash(strings.TrimSuffix(d.Name(), zstdSuffix))
		if err != nil {
			return nil
		}
		hashes = append(hashes, h)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking blobs directory: %w", err)
	}
	return hashes, nil
}

// ValidateSetup verifies that the blobs directory is accessible and writable.
func (s *FileSystemStore) ValidateSetup(ctx context.Context) error {
	info, err := os.Stat(s.blobsDir)
	if err != nil {
		return fmt.Errorf("blob store not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("blob store path is not a directory: %s", s.blobsDir)
	}

	probe, err := os.CreateTemp(s.blobsDir, tempPrefix+"probe-*")
	if err != nil {
		return fmt.Errorf("blob store not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

// cleanupTemp removes temp files left behind by interrupted writes.
func (s *FileSystemStore) cleanupTemp() (int, error) {
	removed := 0
	err := filepath.WalkDir(s.blobsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", p, err)
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("cleaning temp files: %w", err)
	}
	return removed, nil
}

// Close releases the compression codecs.
func (s *FileSystemStore) Close() error {
	s.decoder.Close()
	return s.encoder.Close()
}

// writeFileAtomic writes data to destPath using a temp file in the same
// directory followed by a rename.
func writeFileAtomic(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemStore implements fh.BlobStore interface
var _ fh.BlobStore = (*FileSystemStore)(nil)
