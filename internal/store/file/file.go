// Package file implements the search store as a single YAML document on disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the current document schema version.
const SchemaVersion = 1

// ErrClosed is returned when operations are attempted on a closed store.
var ErrClosed = errors.New("file store is closed")

// document is the on-disk layout. Values are the serialized records,
// kept as opaque strings.
type document struct {
	Version  int               `yaml:"version"`
	Searches map[string]string `yaml:"searches"`
}

// Store keeps every saved search in one YAML file.
// Each write replaces the file through a temp file + rename, so readers
// never see a partial document.
type Store struct {
	mu       sync.Mutex
	path     string
	searches map[string]string
	closed   bool
}

// NewStore opens (or lazily creates) the document at path.
// A missing file is an empty store.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	s := &Store{path: path}
	searches, err := s.read()
	if err != nil {
		return nil, err
	}
	s.searches = searches
	return s, nil
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// read parses the document from disk.
func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if doc.Version > SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d (max: %d)", doc.Version, SchemaVersion)
	}
	if doc.Searches == nil {
		doc.Searches = map[string]string{}
	}
	return doc.Searches, nil
}

// write replaces the document atomically.
func (s *Store) write(searches map[string]string) error {
	data, err := yaml.Marshal(document{Version: SchemaVersion, Searches: searches})
	if err != nil {
		return fmt.Errorf("failed to marshal searches: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// LoadAll re-reads the document and returns every stored search.
func (s *Store) LoadAll(_ context.Context) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	searches, err := s.read()
	if err != nil {
		return nil, err
	}
	s.searches = searches

	out := make(map[string][]byte, len(searches))
	for tag, raw := range searches {
		out[tag] = []byte(raw)
	}
	return out, nil
}

// Put stores raw under tag and rewrites the document.
func (s *Store) Put(_ context.Context, tag string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	next := make(map[string]string, len(s.searches)+1)
	for k, v := range s.searches {
		next[k] = v
	}
	next[tag] = string(raw)

	if err := s.write(next); err != nil {
		return err
	}
	s.searches = next
	return nil
}

// Remove deletes tag and rewrites the document. Absent tags are a no-op.
func (s *Store) Remove(_ context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, ok := s.searches[tag]; !ok {
		return nil
	}

	next := make(map[string]string, len(s.searches))
	for k, v := range s.searches {
		if k != tag {
			next[k] = v
		}
	}

	if err := s.write(next); err != nil {
		return err
	}
	s.searches = next
	return nil
}

// Count returns the number of searches in the last read or written document.
func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	return int64(len(s.searches)), nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
