package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MYSUPPORT_API_URL", "")
	t.Setenv("MYSUPPORT_LANG", "")
	t.Setenv("MYSUPPORT_STATE_FILE", "/tmp/state.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIURL != "http://localhost:9090" || cfg.Lang != "ru" || cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.StateFile != "/tmp/state.json" {
		t.Errorf("StateFile = %q", cfg.StateFile)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MYSUPPORT_API_URL", "https://api.example.com/")
	t.Setenv("MYSUPPORT_LANG", "EN")
	t.Setenv("MYSUPPORT_HTTP_TIMEOUT_SECONDS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIURL != "https://api.example.com" || cfg.Lang != "en" || cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"MYSUPPORT_HTTP_TIMEOUT_SECONDS", "soon"},
		{"MYSUPPORT_HTTP_TIMEOUT_SECONDS", "0"},
		{"MYSUPPORT_LANG", "tr"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Error("Load() error = nil")
			}
		})
	}
}
