// Package i18n provides the message catalogue shared by the server (API
// error messages) and the client (form errors, mood labels).
//
// The language is picked in this order:
//  1. explicit choice (client config, user preference)
//  2. Accept-Language header
//  3. DefaultLanguage (ru)
//
// Usage:
//
//	localizer := i18n.NewLocalizer("en")
//	msg := localizer.T("auth.invalidCredentials")
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

// SupportedLanguages lists the language codes with a locales/<code>.json file.
var SupportedLanguages = []string{"ru", "en"}

// DefaultLanguage is used when nothing better is known.
const DefaultLanguage = "ru"

// translations is map[lang]map[key]value. Written once, read-only afterwards.
var (
	translations map[string]map[string]string
	loadOnce     sync.Once
	loadErr      error
)

// Load reads one JSON file per supported language from localesFS. Only the
// first call has an effect; later calls return the first result.
func Load(localesFS fs.FS) error {
	loadOnce.Do(func() {
		loaded := make(map[string]map[string]string)

		for _, lang := range SupportedLanguages {
			fileName := lang + ".json"

			data, err := fs.ReadFile(localesFS, fileName)
			if err != nil {
				loadErr = fmt.Errorf("failed to read translation file %s: %w", fileName, err)
				return
			}

			var nested map[string]any
			if err := json.Unmarshal(data, &nested); err != nil {
				loadErr = fmt.Errorf("failed to parse translation file %s: %w", fileName, err)
				return
			}

			flat := make(map[string]string)
			flattenMap("", nested, flat)
			loaded[lang] = flat
		}

		translations = loaded
	})

	return loadErr
}

// LoadEmbedded loads the catalogue compiled into the binary.
func LoadEmbedded() error {
	sub, err := fs.Sub(EmbeddedLocales, "locales")
	if err != nil {
		return fmt.Errorf("failed to open embedded locales: %w", err)
	}
	return Load(sub)
}

// KeyCount returns the number of keys loaded for lang.
func KeyCount(lang string) int {
	return len(translations[lang])
}

// Localizer translates keys into one language.
type Localizer struct {
	lang string
}

// NewLocalizer returns a Localizer for lang, falling back to DefaultLanguage
// for unsupported codes. The embedded catalogue is loaded on first use if
// Load was never called.
func NewLocalizer(lang string) *Localizer {
	_ = LoadEmbedded()

	lang = normalize(lang)
	if !isSupported(lang) {
		lang = DefaultLanguage
	}
	return &Localizer{lang: lang}
}

// Lang returns the localizer's language code.
func (l *Localizer) Lang() string {
	return l.lang
}

// T returns the message for key: the localizer's language first, then
// DefaultLanguage, then the key itself.
func (l *Localizer) T(key string) string {
	if msg, ok := translations[l.lang][key]; ok {
		return msg
	}
	if msg, ok := translations[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// TWithParams translates key and substitutes {{param}} placeholders.
func (l *Localizer) TWithParams(key string, params map[string]string) string {
	msg := l.T(key)
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}
	return msg
}

// DetectLanguage picks the first supported language from an Accept-Language
// header such as "en-US,en;q=0.9,ru;q=0.8".
func DetectLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLanguage
	}

	for _, part := range strings.Split(acceptLanguage, ",") {
		lang := normalize(strings.Split(part, ";")[0])
		if isSupported(lang) {
			return lang
		}
	}

	return DefaultLanguage
}

type contextKey struct{}

// WithLocalizer stores l in ctx.
func WithLocalizer(ctx context.Context, l *Localizer) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the Localizer stored by WithLocalizer, or one for
// DefaultLanguage.
func FromContext(ctx context.Context) *Localizer {
	if l, ok := ctx.Value(contextKey{}).(*Localizer); ok && l != nil {
		return l
	}
	return NewLocalizer(DefaultLanguage)
}

func normalize(lang string) string {
	lang = strings.TrimSpace(lang)
	lang = strings.Split(lang, "-")[0]
	lang = strings.Split(lang, "_")[0]
	return strings.ToLower(lang)
}

func isSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// flattenMap turns {"auth": {"login": "..."}} into {"auth.login": "..."}.
func flattenMap(prefix string, src map[string]any, dst map[string]string) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			dst[key] = val
		case map[string]any:
			flattenMap(key, val, dst)
		}
	}
}
