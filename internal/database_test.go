package internal

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/iksnae/pairide/testutil"
)

func TestSQLiteStore_EmptyDatabase(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	store, err := NewSQLiteStore(db, ":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}

	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(state.Notebooks) != 0 {
		t.Errorf("Load() = %+v, want empty state", state)
	}

	_, found, err := store.SavedAt(context.Background())
	if err != nil || found {
		t.Errorf("SavedAt() = found %v, err %v; want not found", found, err)
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	store, err := NewSQLiteStore(db, ":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	ctx := context.Background()

	first := CreateTestState()
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// A second save replaces the single snapshot row
	second := CreateTestState()
	second.Notebooks["nb1"].Title = "Renamed"
	before := time.Now().UTC().Add(-time.Second)
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(second, loaded) {
		t.Errorf("Load() after Save() differs\n got: %+v\nwant: %+v", loaded, second)
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&rows); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("snapshots has %d rows, want 1", rows)
	}

	at, found, err := store.SavedAt(ctx)
	if err != nil || !found {
		t.Fatalf("SavedAt() = found %v, err %v", found, err)
	}
	if at.Before(before) {
		t.Errorf("SavedAt() = %v, want after %v", at, before)
	}
}

func TestSQLiteStore_CorruptDocument(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	store, err := NewSQLiteStore(db, ":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	testutil.InsertSnapshot(t, db, `{"notebooks": [}`)

	if _, err := store.Load(context.Background()); !errors.Is(err, ErrPersistence) {
		t.Errorf("Load() error = %v, want PersistenceError", err)
	}
}

func TestOpenSQLiteStore_File(t *testing.T) {
	path := filepath.Join(testutil.CreateTempDir(t), "nested", "state.db")
	ctx := context.Background()

	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	if err := store.Save(ctx, CreateTestState()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() reopen error = %v", err)
	}
	defer reopened.Close()
	state, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := state.Sessions["s1"]; !ok {
		t.Error("reopened store lost session s1")
	}
}
