package database

import (
	"context"
	"path/filepath"
	"testing"
)

// NewTestDB opens a migrated SQLite database in a temporary directory that
// is removed when the test finishes.
func NewTestDB(t testing.TB) *DB {
	t.Helper()

	db, err := NewDB(Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.RunMigrations(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
