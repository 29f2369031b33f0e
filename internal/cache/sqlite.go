package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// SQLiteStore keeps documents as rows in a single documents table.
//
// Offers the same contract as [FileStore]; the transactional upsert stands
// in for the temp-file-then-rename dance.
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
}

// NewSQLiteStore wraps an open database connection and ensures the documents
// table exists.
func NewSQLiteStore(db *sql.DB, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Get reads the named document into v. Missing rows and rows whose body no
// longer parses both leave v at its default; the latter logs a warning.
func (s *SQLiteStore) Get(name string, v any) error {
	var body []byte
	err := s.db.QueryRow("SELECT body FROM documents WHERE name = ?", name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read document %q: %w", name, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		s.logger.Warn("cache document is corrupt, using default", "document", name, "err", err)
		return nil
	}
	return nil
}

// Put upserts the named document inside a transaction.
func (s *SQLiteStore) Put(name string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal document %q: %w", name, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, body,
	)
	if err != nil {
		return fmt.Errorf("failed to write document %q: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document %q: %w", name, err)
	}
	return nil
}
