package state

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Failed to open state db: %v", err)
	}
	defer db.Close()

	if err := db.Put("k", "v1"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := db.Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "v1" {
		t.Errorf("Get = %q, want v1", got)
	}

	// Upsert replaces.
	if err := db.Put("k", "v2"); err != nil {
		t.Fatalf("Second Put failed: %v", err)
	}
	got, _ = db.Get("k")
	if got != "v2" {
		t.Errorf("Get after overwrite = %q, want v2", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open state db: %v", err)
	}
	defer db.Close()

	if _, err := db.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on missing key = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open state db: %v", err)
	}
	defer db.Close()

	if err := db.Put("k", "v"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := db.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := db.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}

	// Deleting an absent key is a no-op.
	if err := db.Delete("k"); err != nil {
		t.Errorf("Delete of missing key = %v, want nil", err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open state db: %v", err)
	}
	if err := db.Put("k", "survives"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen state db: %v", err)
	}
	defer db.Close()

	got, err := db.Get("k")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got != "survives" {
		t.Errorf("Get after reopen = %q, want survives", got)
	}
}
