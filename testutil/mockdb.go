package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an in-memory SQLite database closed when the test ends
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// Every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// InsertSnapshot writes a raw snapshot row, bypassing the store, to test corrupt documents
func InsertSnapshot(t *testing.T, db *sql.DB, document string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO snapshots (id, document, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document`, document, "2024-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("Failed to insert snapshot: %v", err)
	}
}
