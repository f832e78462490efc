package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// CurrentVersion is the settings schema version written by this binary.
const CurrentVersion = 1

// Config represents the main configuration for fh.
type Config struct {
	Version    int              `toml:"version"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Log        LogConfig        `toml:"log"`
	Database   DatabaseConfig   `toml:"database"`
	Blobs      BlobsConfig      `toml:"blobs"`
	Retention  RetentionConfig  `toml:"retention"`
	Filesystem FilesystemConfig `toml:"filesystem"`

	// unknown holds top-level keys this binary does not understand, so a
	// newer or hand-edited file survives a read/write cycle.
	unknown map[string]any
}

// LogConfig controls the application log.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn" or "error"
}

// DatabaseConfig represents configuration for the snapshot ledger.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// BlobsConfig represents configuration for the blob store backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type BlobsConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", "sqlite", "s3" or "minio"

	// Filesystem-specific fields (only used when Type == "filesystem")
	FSRoot   string `toml:"fs_root,omitempty"`
	Compress bool   `toml:"compress"` // zstd-compress payloads on disk

	// Object storage fields (used when Type == "s3" or "minio")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"` // custom endpoint; required for minio
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
	S3UsePathStyle    bool   `toml:"s3_use_path_style,omitempty"`
	S3UseSSL          bool   `toml:"s3_use_ssl,omitempty"` // minio only
}

// RetentionConfig bounds per-file history.
type RetentionConfig struct {
	MaxSnapshots int `toml:"max_snapshots"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	// FallbackEncoding decodes files that are neither BOM-marked nor valid UTF-8.
	FallbackEncoding string   `toml:"fallback_encoding"`
	Ignore           []string `toml:"ignore"`
}

// NewConfig creates a Config with default settings rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		Version: CurrentVersion,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Log:     LogConfig{Level: "info"},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Blobs: BlobsConfig{
			Type:     "filesystem",
			FSRoot:   filepath.Join(baseDir, "blobs"),
			Compress: true,
		},
		Retention: RetentionConfig{MaxSnapshots: 100},
		Filesystem: FilesystemConfig{
			FallbackEncoding: "shift_jis",
			Ignore:           []string{".git", "*.swp", "*~"},
		},
	}
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "memory":
	case "sqlite":
		if c.Database.DataDir == "" {
			return fmt.Errorf("database: data_dir required for sqlite")
		}
	default:
		return fmt.Errorf("database: unknown type %q", c.Database.Type)
	}

	switch c.Blobs.Type {
	case "memory":
	case "sqlite":
		if c.Database.Type != "sqlite" && c.Database.Type != "memory" {
			return fmt.Errorf("blobs: sqlite blobs need a sqlite database")
		}
	case "filesystem":
		if c.Blobs.FSRoot == "" {
			return fmt.Errorf("blobs: fs_root required for filesystem")
		}
	case "s3":
		if c.Blobs.S3Bucket == "" {
			return fmt.Errorf("blobs: s3_bucket required for s3")
		}
	case "minio":
		if c.Blobs.S3Bucket == "" || c.Blobs.S3Endpoint == "" {
			return fmt.Errorf("blobs: s3_bucket and s3_endpoint required for minio")
		}
	default:
		return fmt.Errorf("blobs: unknown type %q", c.Blobs.Type)
	}

	if c.Retention.MaxSnapshots <= 0 {
		return fmt.Errorf("retention: max_snapshots must be positive, got %d", c.Retention.MaxSnapshots)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unknown level %q", c.Log.Level)
	}
	return nil
}

// Unknown returns the top-level keys that were read but not understood.
func (c *Config) Unknown() map[string]any {
	return c.unknown
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader on top of the defaults for
// baseDir. Keys present in the input override defaults; keys missing from it
// keep their default; keys this binary does not know are preserved.
func (m *Manager) Read(r io.Reader, baseDir string) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := NewConfig(baseDir)
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var raw map[string]any
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
		cfg.unknown = make(map[string]any)
		for _, key := range undecoded {
			if len(key) == 1 {
				cfg.unknown[key[0]] = raw[key[0]]
			}
		}
	}
	return cfg, nil
}

// Write encodes a Config to the provided writer, followed by any unknown
// top-level keys it was read with.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if len(cfg.unknown) > 0 {
		// Re-encode as one map: a bare key appended after the last table
		// would otherwise land inside that table.
		var merged map[string]any
		if _, err := toml.Decode(buf.String(), &merged); err != nil {
			return fmt.Errorf("failed to merge unknown keys: %w", err)
		}
		for k, v := range cfg.unknown {
			merged[k] = v
		}
		buf.Reset()
		if err := toml.NewEncoder(&buf).Encode(merged); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string, baseDir string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f, baseDir)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// Save overwrites the config file at path.
func Save(path string, cfg *Config) error {
	return writeToFile(path, cfg)
}
