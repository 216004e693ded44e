package lists_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	_ "modernc.org/sqlite"

	"fantamorto/internal/lists"
)

func openStore(t *testing.T) *lists.SQLiteStore {
	t.Helper()
	store, err := lists.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "state", "lists.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteMissingKeyReadsEmpty(t *testing.T) {
	store := openStore(t)
	names, err := store.ReadList(context.Background(), "morti.json")
	if err != nil {
		t.Fatalf("ReadList: %v", err)
	}
	if names == nil || len(names) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", names)
	}
}

func TestSQLiteWriteOverwrites(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.WriteList(ctx, "maybe", []string{"A", "B"}); err != nil {
		t.Fatalf("WriteList: %v", err)
	}
	if err := store.WriteList(ctx, "maybe", []string{"C"}); err != nil {
		t.Fatalf("WriteList: %v", err)
	}
	got, err := store.ReadList(ctx, "maybe")
	if err != nil {
		t.Fatalf("ReadList: %v", err)
	}
	if !slices.Equal(got, []string{"C"}) {
		t.Fatalf("expected overwrite, got %v", got)
	}
	if _, ok, err := store.UpdatedAt(ctx, "maybe"); err != nil || !ok {
		t.Fatalf("expected updated_at to be recorded (ok=%v err=%v)", ok, err)
	}

	if err := store.WriteList(ctx, "maybe", nil); err != nil {
		t.Fatalf("WriteList(nil): %v", err)
	}
	got, err = store.ReadList(ctx, "maybe")
	if err != nil {
		t.Fatalf("ReadList: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected cleared list, got %v", got)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists.db")
	ctx := context.Background()

	store, err := lists.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := store.WriteList(ctx, "dead", []string{"Mario Rossi"}); err != nil {
		t.Fatalf("WriteList: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := lists.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	got, err := reopened.ReadList(ctx, "dead")
	if err != nil {
		t.Fatalf("ReadList: %v", err)
	}
	if !slices.Equal(got, []string{"Mario Rossi"}) {
		t.Fatalf("unexpected list after reopen: %v", got)
	}
}

func TestSQLiteSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists.db")
	ctx := context.Background()
	store, err := lists.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := lists.OpenSQLite(ctx, path); !errors.Is(err, lists.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestSQLiteRejectsEmptyKey(t *testing.T) {
	store := openStore(t)
	if err := store.WriteList(context.Background(), " ", []string{"A"}); err == nil {
		t.Fatal("expected empty key to be rejected")
	}
}
