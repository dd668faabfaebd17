// Package i18n looks up operator-facing text in the clinic's translation
// catalog.
package i18n

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"vetclinic/m/internal/config"
	"vetclinic/m/internal/logger"
	"vetclinic/m/internal/notify"
)

//go:embed translations.json
var defaultCatalog []byte

// Catalog maps a key to its text per language code.
type Catalog map[string]map[string]string

var (
	supported = []language.Tag{language.Arabic, language.English}
	matcher   = language.NewMatcher(supported)
	byName    = map[string]language.Tag{"arabic": language.Arabic, "english": language.English}
)

const fallbackLanguage = "en"

type SettingsSource interface {
	Get() config.Settings
}

type Translator struct {
	mu       sync.RWMutex
	catalog  Catalog
	lang     string
	missing  map[string]bool
	settings SettingsSource
	log      logger.Logger
}

// Load reads the catalog from path, or uses the embedded catalog when path
// is empty.
func Load(path string) (Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read translations %s: %w", path, err)
		}
		data = b
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse translations: %w", err)
	}
	return c, nil
}

func New(catalog Catalog, settings SettingsSource, log logger.Logger) *Translator {
	t := &Translator{catalog: catalog, lang: fallbackLanguage, missing: map[string]bool{}, settings: settings, log: log}
	if settings != nil {
		t.SetLanguage(settings.Get().Language)
	}
	return t
}

// Normalize maps a setting such as "ar", "Arabic" or "en-US" onto one of
// the supported language codes.
func Normalize(setting string) string {
	s := strings.ToLower(strings.TrimSpace(setting))
	tag, ok := byName[s]
	if !ok {
		parsed, err := language.Parse(s)
		if err != nil {
			return fallbackLanguage
		}
		tag = parsed
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return fallbackLanguage
	}
	base, _ := supported[idx].Base()
	return base.String()
}

func (t *Translator) SetLanguage(setting string) {
	lang := Normalize(setting)
	t.mu.Lock()
	t.lang = lang
	t.mu.Unlock()
}

func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// T returns the text for key in the current language, falling back to
// English and then to the key itself.
func (t *Translator) T(key string) string {
	t.mu.RLock()
	entry, ok := t.catalog[key]
	lang := t.lang
	t.mu.RUnlock()
	if ok {
		if s := entry[lang]; s != "" {
			return s
		}
		if s := entry[fallbackLanguage]; s != "" {
			return s
		}
	}
	t.warnMissing(key)
	return key
}

func (t *Translator) warnMissing(key string) {
	t.mu.Lock()
	seen := t.missing[key]
	t.missing[key] = true
	t.mu.Unlock()
	if !seen {
		t.log.Warn("translation key not found", map[string]any{"key": key})
	}
}

// Table is the catalog flattened to the current language.
func (t *Translator) Table() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]string, len(t.catalog))
	for key, entry := range t.catalog {
		switch {
		case entry[t.lang] != "":
			out[key] = entry[t.lang]
		case entry[fallbackLanguage] != "":
			out[key] = entry[fallbackLanguage]
		default:
			out[key] = key
		}
	}
	return out
}

// Refresh picks up a changed language setting.
func (t *Translator) Refresh(ctx context.Context, topic notify.Topic) error {
	if topic != notify.TopicSettings || t.settings == nil {
		return nil
	}
	t.SetLanguage(t.settings.Get().Language)
	return nil
}
