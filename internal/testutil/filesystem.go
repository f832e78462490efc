package testutil

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"fh-go/internal/fh"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Text     string
	Encoding fh.Encoding
	Binary   bool
}

// MockFilesystemManager is an in-memory filesystem for testing.
// Paths are used verbatim. Safe for concurrent use.
type MockFilesystemManager struct {
	mu        sync.Mutex
	files     map[string]*MockFile
	existsErr map[string]error
	writeErr  error
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:     make(map[string]*MockFile),
		existsErr: make(map[string]error),
	}
}

// AddFile adds a UTF-8 text file to the mock filesystem.
func (m *MockFilesystemManager) AddFile(p string, text string) {
	m.AddEncodedFile(p, text, fh.EncodingUTF8)
}

// AddEncodedFile adds a text file stored in enc.
func (m *MockFilesystemManager) AddEncodedFile(p string, text string, enc fh.Encoding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = &MockFile{Text: text, Encoding: enc}
}

// AddBinaryFile adds a file that does not decode as text.
func (m *MockFilesystemManager) AddBinaryFile(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = &MockFile{Binary: true}
}

// Remove deletes a file from the mock filesystem.
func (m *MockFilesystemManager) Remove(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, p)
}

// File returns the file at p, or nil.
func (m *MockFilesystemManager) File(p string) *MockFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[p]; ok {
		copied := *f
		return &copied
	}
	return nil
}

// FailExists makes Exists(p) return err. nil clears the failure.
func (m *MockFilesystemManager) FailExists(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.existsErr, p)
		return
	}
	m.existsErr[p] = err
}

// FailWrites makes every WriteText return err. nil clears the failure.
func (m *MockFilesystemManager) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

func (m *MockFilesystemManager) Exists(p string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.existsErr[p]; err != nil {
		return false, err
	}
	_, ok := m.files[p]
	return ok, nil
}

func (m *MockFilesystemManager) ReadText(p string) (string, fh.Encoding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[p]
	if !ok {
		return "", "", fmt.Errorf("reading %s: %w", p, fs.ErrNotExist)
	}
	if f.Binary {
		return "", "", fmt.Errorf("%s: %w", p, fh.ErrNotText)
	}
	return f.Text, f.Encoding, nil
}

func (m *MockFilesystemManager) WriteText(p string, text string, enc fh.Encoding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.files[p] = &MockFile{Text: text, Encoding: enc}
	return nil
}

func (m *MockFilesystemManager) DetectEncoding(p string) (fh.Encoding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[p]
	if !ok {
		return "", fmt.Errorf("reading %s: %w", p, fs.ErrNotExist)
	}
	if f.Binary {
		return "", fmt.Errorf("%s: %w", p, fh.ErrNotText)
	}
	return f.Encoding, nil
}

// FindFiles returns the files under dir in path order. Ignore patterns are
// not modelled.
func (m *MockFilesystemManager) FindFiles(dir string, recursive bool) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := strings.TrimSuffix(dir, "/") + "/"
	var paths []string
	for p := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		if !recursive && path.Dir(p) != strings.TrimSuffix(prefix, "/") {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// Compile-time check
var _ fh.FilesystemManager = (*MockFilesystemManager)(nil)
