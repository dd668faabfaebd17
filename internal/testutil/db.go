package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"vetclinic/m/internal/database"
	"vetclinic/m/internal/migrations"
)

// OpenDB returns a migrated SQLite database in a per-test directory. The
// file is removed with the directory when the test ends.
func OpenDB(t testing.TB) (*sqlx.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clinic.db")
	db, err := database.Open(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, path
}
