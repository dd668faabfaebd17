package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettingsCreatesMissingFile(t *testing.T) {
	t.Setenv("DEFAULT_LANGUAGE", "")
	t.Setenv("LOW_STOCK_THRESHOLD", "")
	path := filepath.Join(t.TempDir(), "settings.env")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Language != "ar" || s.LowStockThreshold != 5 || s.Currency != "LE" || s.BackupFrequencyDays != 7 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("settings file was not created: %v", err)
	}
}

func TestSettingsStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.env")
	store, err := OpenSettings(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	next := store.Get()
	next.Language = "en"
	next.LowStockThreshold = 12
	next.Currency = "USD"
	if err := store.Update(next); err != nil {
		t.Fatalf("update: %v", err)
	}

	reloaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded != next {
		t.Fatalf("reloaded %+v, want %+v", reloaded, next)
	}
}

func TestSettingsStoreRejectsInvalid(t *testing.T) {
	store, err := OpenSettings(filepath.Join(t.TempDir(), "settings.env"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	before := store.Get()

	bad := before
	bad.LowStockThreshold = -1
	if err := store.Update(bad); err == nil {
		t.Fatal("expected validation error for negative threshold")
	}
	if store.Get() != before {
		t.Fatal("settings changed after rejected update")
	}
}

func TestLoadSettingsFallsBackOnBadNumbers(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "")
	path := filepath.Join(t.TempDir(), "settings.env")
	if err := os.WriteFile(path, []byte("LANGUAGE=en\nLOW_STOCK_THRESHOLD=lots\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Language != "en" || s.LowStockThreshold != 5 {
		t.Fatalf("unexpected settings: %+v", s)
	}
}
