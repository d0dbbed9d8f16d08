// Package config loads the client settings from the environment, reading
// a .env file first when present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mysupport/mysupport/pkg/i18n"
)

// Config holds the client settings.
type Config struct {
	APIURL      string        // MYSUPPORT_API_URL
	StateFile   string        // MYSUPPORT_STATE_FILE
	Lang        string        // MYSUPPORT_LANG
	HTTPTimeout time.Duration // MYSUPPORT_HTTP_TIMEOUT_SECONDS
}

// Load builds a Config from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout := 15
	if raw, ok := os.LookupEnv("MYSUPPORT_HTTP_TIMEOUT_SECONDS"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MYSUPPORT_HTTP_TIMEOUT_SECONDS %q", raw)
		}
		timeout = n
	}

	lang := strings.ToLower(strings.TrimSpace(getEnv("MYSUPPORT_LANG", i18n.DefaultLanguage)))
	if !isSupported(lang) {
		return nil, fmt.Errorf("unsupported MYSUPPORT_LANG %q", lang)
	}

	return &Config{
		APIURL:      strings.TrimRight(getEnv("MYSUPPORT_API_URL", "http://localhost:9090"), "/"),
		StateFile:   getEnv("MYSUPPORT_STATE_FILE", defaultStateFile()),
		Lang:        lang,
		HTTPTimeout: time.Duration(timeout) * time.Second,
	}, nil
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".mysupport.json"
	}
	return filepath.Join(dir, "mysupport", "state.json")
}

func isSupported(lang string) bool {
	for _, l := range i18n.SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
