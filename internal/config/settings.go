package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const (
	keyLanguage          = "LANGUAGE"
	keyTheme             = "THEME"
	keyLowStockThreshold = "LOW_STOCK_THRESHOLD"
	keyCurrency          = "CURRENCY"
	keyBackupFrequency   = "BACKUP_FREQUENCY"
	keyLogLevel          = "LOG_LEVEL"
)

// Settings are the operator-editable preferences persisted in the settings
// file. They are separate from Config, which only comes from the environment.
type Settings struct {
	Language            string `json:"language"`
	Theme               string `json:"theme"`
	LowStockThreshold   int    `json:"low_stock_threshold"`
	Currency            string `json:"currency"`
	BackupFrequencyDays int    `json:"backup_frequency"`
	LogLevel            string `json:"log_level"`
}

// DefaultSettings returns the built-in defaults. DEFAULT_LANGUAGE,
// DEFAULT_THEME, LOW_STOCK_THRESHOLD, CURRENCY, BACKUP_FREQUENCY and
// LOG_LEVEL in the environment take precedence over them.
func DefaultSettings() Settings {
	return Settings{
		Language:            getEnv("DEFAULT_LANGUAGE", "ar"),
		Theme:               getEnv("DEFAULT_THEME", "default"),
		LowStockThreshold:   envInt("LOW_STOCK_THRESHOLD", 5),
		Currency:            getEnv("CURRENCY", "LE"),
		BackupFrequencyDays: envInt("BACKUP_FREQUENCY", 7),
		LogLevel:            getEnv("LOG_LEVEL", "INFO"),
	}
}

// Validate rejects values the rest of the system cannot act on. A backup
// frequency of zero disables scheduled backups.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.Language) == "" {
		return errors.New("language is required")
	}
	if s.LowStockThreshold < 0 {
		return errors.New("low_stock_threshold cannot be negative")
	}
	if s.BackupFrequencyDays < 0 {
		return errors.New("backup_frequency cannot be negative")
	}
	if strings.TrimSpace(s.Currency) == "" {
		return errors.New("currency is required")
	}
	return nil
}

// LoadSettings reads the settings file. A missing file is created with the
// defaults instead of failing; unparsable numbers fall back to defaults.
func LoadSettings(path string) (Settings, error) {
	defaults := DefaultSettings()

	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := SaveSettings(path, defaults); err != nil {
			return defaults, fmt.Errorf("create settings file: %w", err)
		}
		log.Printf("settings file %s not found, created with defaults", path)
		return defaults, nil
	}
	if err != nil {
		return defaults, fmt.Errorf("read settings file: %w", err)
	}

	s := defaults
	if v := strings.TrimSpace(values[keyLanguage]); v != "" {
		s.Language = v
	}
	if v := strings.TrimSpace(values[keyTheme]); v != "" {
		s.Theme = v
	}
	if v := strings.TrimSpace(values[keyCurrency]); v != "" {
		s.Currency = v
	}
	if v := strings.TrimSpace(values[keyLogLevel]); v != "" {
		s.LogLevel = v
	}
	s.LowStockThreshold = parseIntSetting(values, keyLowStockThreshold, defaults.LowStockThreshold)
	s.BackupFrequencyDays = parseIntSetting(values, keyBackupFrequency, defaults.BackupFrequencyDays)
	return s, nil
}

// SaveSettings writes every key, replacing the file.
func SaveSettings(path string, s Settings) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return godotenv.Write(map[string]string{
		keyLanguage:          s.Language,
		keyTheme:             s.Theme,
		keyLowStockThreshold: strconv.Itoa(s.LowStockThreshold),
		keyCurrency:          s.Currency,
		keyBackupFrequency:   strconv.Itoa(s.BackupFrequencyDays),
		keyLogLevel:          s.LogLevel,
	}, path)
}

// SettingsStore keeps the current settings in memory and writes changes
// through to the file.
type SettingsStore struct {
	mu      sync.RWMutex
	path    string
	current Settings
}

func OpenSettings(path string) (*SettingsStore, error) {
	s, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	return &SettingsStore{path: path, current: s}, nil
}

func (s *SettingsStore) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates and persists next. The in-memory copy only changes once
// the file has been written.
func (s *SettingsStore) Update(next Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := SaveSettings(s.path, next); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.current = next
	return nil
}

func parseIntSetting(values map[string]string, key string, fallback int) int {
	raw := strings.TrimSpace(values[key])
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Printf("invalid %s value %q in settings, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s value %q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}
