package database

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDatabaseIntegration exercises the complete lifecycle against a
// throwaway SQLite file: open, migrate, insert, read back.
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "integration.db")
	defer os.Remove(dbPath)

	db, err := Open("sqlite", DialectConfig{Path: dbPath})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Pragmas arrive through the DSN, so any pooled connection has them.
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		t.Fatalf("Failed to read journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want wal", journalMode)
	}
	var foreignKeys int
	if err := db.QueryRow("PRAGMA foreign_keys;").Scan(&foreignKeys); err != nil {
		t.Fatalf("Failed to read foreign_keys: %v", err)
	}
	if foreignKeys != 1 {
		t.Errorf("foreign_keys = %d, want 1", foreignKeys)
	}

	// Tables created by the initial migration.
	tables := []string{"practice_items", "practice_sessions", "item_attempts", "companions"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Running migrations twice must be a no-op.
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Re-running migrations failed: %v", err)
	}

	id, err := db.ExecReturningID(
		"INSERT INTO practice_items (child_id, text, item_type, current_stage) VALUES (?, ?, ?, ?)",
		1, "cat", "word", "seedling",
	)
	if err != nil {
		t.Fatalf("Failed to insert practice item: %v", err)
	}
	if id == 0 {
		t.Error("ExecReturningID returned zero ID")
	}

	var text string
	if err := db.QueryRow("SELECT text FROM practice_items WHERE id = ?", id).Scan(&text); err != nil {
		t.Fatalf("Failed to read practice item back: %v", err)
	}
	if text != "cat" {
		t.Errorf("text = %q, want %q", text, "cat")
	}
}
