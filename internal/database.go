package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	document TEXT NOT NULL,
	saved_at TEXT NOT NULL
)`

// SQLiteStore keeps the snapshot document in a single-row SQLite table
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenDatabase opens (creating if needed) a SQLite database
func OpenDatabase(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases coherent and serializes writers
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

// OpenSQLiteStore opens the database at path and ensures the schema exists
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Path: path, Err: err}
	}
	store, err := NewSQLiteStore(db, path)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wraps an open database
func NewSQLiteStore(db *sql.DB, path string) (*SQLiteStore, error) {
	if _, err := db.Exec(snapshotSchema); err != nil {
		return nil, &PersistenceError{Op: "migrate", Path: path, Err: err}
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Location returns the database path
func (s *SQLiteStore) Location() string {
	return s.path
}

// Load reads the snapshot row; no row yields an empty state
func (s *SQLiteStore) Load(ctx context.Context) (*WorkspaceState, error) {
	var document string
	err := s.db.QueryRowContext(ctx, "SELECT document FROM snapshots WHERE id = 1").Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		LogDebug("no snapshot row, starting empty", "path", s.path)
		return NewWorkspaceState(), nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	state, err := DecodeSnapshot([]byte(document))
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	return state, nil
}

// Save upserts the snapshot row inside a transaction
func (s *SQLiteStore) Save(ctx context.Context, state *WorkspaceState) error {
	document, err := EncodeSnapshot(state)
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, document, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document, saved_at = excluded.saved_at`,
		string(document), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

// SavedAt reports when the snapshot was last written, if ever
func (s *SQLiteStore) SavedAt(ctx context.Context) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT saved_at FROM snapshots WHERE id = 1").Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
