package migrations

import (
	"path/filepath"
	"testing"

	"vetclinic/m/internal/database"
)

func TestRunIsIdempotent(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "clinic.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		if err := Run(db); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	var tables []string
	if err := db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`); err != nil {
		t.Fatalf("list tables: %v", err)
	}
	want := []string{"appointments", "billings", "expenses", "inventory", "operators", "owners", "pets", "vaccines"}
	if len(tables) != len(want) {
		t.Fatalf("tables = %v, want %v", tables, want)
	}
	for i := range want {
		if tables[i] != want[i] {
			t.Fatalf("tables = %v, want %v", tables, want)
		}
	}
}

func TestOwnerPhoneIsUnique(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "clinic.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer db.Close()
	if err := Run(db); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, err := db.Exec(`INSERT INTO owners (name, phone_number) VALUES ('Mona', '+201234567')`); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO owners (name, phone_number) VALUES ('Other', '+201234567')`); err == nil {
		t.Fatal("expected unique violation on duplicate phone")
	}
}
