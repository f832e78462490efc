package fs

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-directory file listing extra ignore patterns.
const IgnoreFileName = ".fhignore"

// defaultIgnorePatterns are always applied regardless of config or .fhignore.
var defaultIgnorePatterns = []string{IgnoreFileName, ".fh-restore-*"}

// ignorePattern is one parsed ignore rule.
type ignorePattern struct {
	glob     string
	anchored bool // contains '/': matched against the relative path
	dirOnly  bool // trailing '/': matches directories only
}

// IgnoreMatcher decides which scanned entries to skip.
//
// A pattern without '/' matches an entry's basename at any depth. A pattern
// containing '/' matches the slash-separated path relative to the scan root.
// A trailing '/' restricts the pattern to directories.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher parses raw pattern lines. Blank lines and '#' comments are
// skipped.
func NewIgnoreMatcher(lines []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p := ignorePattern{}
		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimRight(line, "/")
		}
		p.glob = strings.TrimPrefix(line, "/")
		p.anchored = strings.Contains(line, "/")
		if p.glob == "" {
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Match reports whether the entry at relPath (relative to the scan root) is
// ignored.
func (m *IgnoreMatcher) Match(relPath string, isDir bool) bool {
	slashed := filepath.ToSlash(relPath)
	base := filepath.Base(relPath)

	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		subject := base
		if p.anchored {
			subject = slashed
		}
		ok, err := filepath.Match(p.glob, subject)
		if err != nil {
			continue // malformed pattern
		}
		if ok {
			return true
		}
	}
	return false
}

// ParseIgnoreFile returns the lines of an ignore file, or nil when the file
// does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return lines, nil
}
