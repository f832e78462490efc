package blobstore

import (
	"context"
	"database/sql"
	"fmt"

	"fh-go/internal/config"
	"fh-go/internal/fh"
)

// NewBlobStoreFromConfig creates a BlobStore based on the provided configuration.
// db is the ledger connection, used only by the sqlite backend.
func NewBlobStoreFromConfig(ctx context.Context, cfg config.BlobsConfig, db *sql.DB) (fh.BlobStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem blob store requires fs_root")
		}
		return NewFileSystemStore(cfg.FSRoot, cfg.Compress)
	case "sqlite":
		if db == nil {
			return nil, fmt.Errorf("sqlite blob store requires a database connection")
		}
		return NewSQLiteStore(db), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 blob store requires s3_bucket")
		}
		return NewS3Store(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			UsePathStyle:    cfg.S3UsePathStyle,
		})
	case "minio":
		if cfg.S3Bucket == "" || cfg.S3Endpoint == "" {
			return nil, fmt.Errorf("minio blob store requires s3_bucket and s3_endpoint")
		}
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:        cfg.S3Endpoint,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			UseSSL:          cfg.S3UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown blob store type: %s", cfg.Type)
	}
}
