package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "capsules.db")

	db, fresh, err := Init(dbPath)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	if !fresh {
		t.Error("fresh = false, want true for a new database")
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}

	// Verify WAL mode is active
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}

	// Verify schema was created by checking for capsules table
	var tableName string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='capsules'").Scan(&tableName)
	if err != nil {
		t.Fatalf("capsules table not found: %v", err)
	}
}

func TestInit_CreatesDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "path")

	db, _, err := Init(filepath.Join(dir, "capsules.db"))
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Errorf("data directory not created at %s", dir)
	}
}

func TestInit_ReopenIsNotFresh(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "capsules.db")

	db, _, err := Init(dbPath)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	db.Close()

	db, fresh, err := Init(dbPath)
	if err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	defer db.Close()

	if fresh {
		t.Error("fresh = true, want false on reopen")
	}
}

func TestUserVersion(t *testing.T) {
	db, _, err := Init(filepath.Join(t.TempDir(), "capsules.db"))
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	version, err := GetUserVersion(db)
	if err != nil {
		t.Fatalf("GetUserVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("version = %d, want %d", version, CurrentSchemaVersion)
	}

	if err := SetUserVersion(db, 99); err != nil {
		t.Fatalf("SetUserVersion() error = %v", err)
	}
	version, err = GetUserVersion(db)
	if err != nil {
		t.Fatalf("GetUserVersion() error = %v", err)
	}
	if version != 99 {
		t.Errorf("version = %d, want 99", version)
	}
}
