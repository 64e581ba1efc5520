package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	StoreDriverJSON   = "json"
	StoreDriverSQLite = "sqlite"
)

// Store loads and saves the workspace snapshot as a single unit
type Store interface {
	// Load returns the persisted state, or an empty state if nothing was saved yet
	Load(ctx context.Context) (*WorkspaceState, error)
	// Save replaces the persisted snapshot with state
	Save(ctx context.Context, state *WorkspaceState) error
	// Location describes where the snapshot lives
	Location() string
	Close() error
}

// OpenStore creates a store for the given driver
func OpenStore(driver, path string) (Store, error) {
	switch driver {
	case "", StoreDriverJSON:
		return NewFileStore(path), nil
	case StoreDriverSQLite:
		return OpenSQLiteStore(path)
	default:
		return nil, &ValidationError{
			Op:     "open store",
			Reason: fmt.Sprintf("unsupported store %q (supported: json, sqlite)", driver),
		}
	}
}

// EncodeSnapshot renders state as the snapshot document
func EncodeSnapshot(state *WorkspaceState) ([]byte, error) {
	return json.MarshalIndent(state, "", "  ")
}

// DecodeSnapshot parses a snapshot document and checks its invariants
func DecodeSnapshot(data []byte) (*WorkspaceState, error) {
	state := NewWorkspaceState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return state, nil
}

// FileStore keeps the snapshot in a JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Location returns the snapshot file path
func (s *FileStore) Location() string {
	return s.path
}

// Load reads the snapshot file; a missing file yields an empty state
func (s *FileStore) Load(ctx context.Context) (*WorkspaceState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		LogDebug("no snapshot on disk, starting empty", "path", s.path)
		return NewWorkspaceState(), nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	state, err := DecodeSnapshot(data)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	return state, nil
}

// Save writes the snapshot to a temp file and renames it over the target
func (s *FileStore) Save(ctx context.Context, state *WorkspaceState) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	data, err := EncodeSnapshot(state)
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	if err := writeFileAtomic(s.path, append(data, '\n')); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

// Close is a no-op for file stores
func (s *FileStore) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	// Remove the temp file on any failure below
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	committed = true
	return nil
}
