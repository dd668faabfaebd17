package database

import (
	"path/filepath"
	"testing"
)

func TestSQLitePath(t *testing.T) {
	cases := []struct {
		dsn  string
		path string
		ok   bool
	}{
		{"vet_clinic.db", "vet_clinic.db", true},
		{"sqlite:///data/vet_clinic.db", "data/vet_clinic.db", true},
		{"file:clinic.db?cache=shared", "clinic.db", true},
		{":memory:", ":memory:", false},
		{"postgres://u:p@localhost/vet", "", false},
	}
	for _, tc := range cases {
		path, ok := SQLitePath(tc.dsn)
		if path != tc.path || ok != tc.ok {
			t.Fatalf("SQLitePath(%q) = (%q, %v), want (%q, %v)", tc.dsn, path, ok, tc.path, tc.ok)
		}
	}
}

func TestOpenEnablesForeignKeys(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "clinic.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer db.Close()

	var enabled int
	if err := db.Get(&enabled, `PRAGMA foreign_keys`); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("foreign_keys = %d, want 1", enabled)
	}
	if DialectOf(db) != SQLite {
		t.Fatalf("dialect = %s", DialectOf(db))
	}
}
