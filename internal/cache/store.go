// Package cache implements the durable named-document store backing every
// pipeline stage.
//
// A Store holds independent named documents (tracks, enrichments,
// classifications, rules, jobs), each serialized as one JSON value. Put is
// atomic: a reader always observes either the prior complete document or the
// new one, never a partial write. Get on a missing or corrupt document fills
// in the caller's default instead of failing; an empty cache is a normal
// state, not an error.
//
// Two implementations are provided: [FileStore] (one file per document,
// write-to-temp-then-rename) and [SQLiteStore] (a documents table with
// transactional upserts).
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Store is the durable document cache contract.
//
// Get unmarshals the named document into v, leaving v untouched when the
// document is missing or corrupt. Put atomically replaces the named document
// with the JSON encoding of v.
type Store interface {
	Get(name string, v any) error
	Put(name string, v any) error
}

// FileStore keeps each document as a JSON file under Dir.
type FileStore struct {
	dir    string
	logger *log.Logger
}

// NewFileStore creates a FileStore rooted at dir. The directory is created
// on first Put, not here, so constructing a store never touches disk.
func NewFileStore(dir string, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &FileStore{dir: dir, logger: logger}
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Get reads the named document into v.
//
// A missing file leaves v at its default and returns nil. A file that fails
// to parse is treated the same way, with a warning: a corrupt cache degrades
// to an empty one rather than stopping the pipeline.
func (s *FileStore) Get(name string, v any) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read document %q: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("cache document is corrupt, using default", "document", name, "err", err)
		return nil
	}
	return nil
}

// Put atomically writes v as the named document.
//
// The JSON is written to a temp file in the target directory, flushed and
// synced, then renamed over the destination. A crash mid-write leaves the
// previous document intact.
func (s *FileStore) Put(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document %q: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write document %q: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync document %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path(name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace document %q: %w", name, err)
	}
	return nil
}
