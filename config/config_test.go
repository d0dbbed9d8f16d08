package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.Server.Addr(); got != "0.0.0.0:9090" {
		t.Errorf("Addr() = %q", got)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN() != "./data/mysupport.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Session.TTL != 30*24*time.Hour {
		t.Errorf("Session.TTL = %v", cfg.Session.TTL)
	}
	if cfg.Diary.ListLimit != 20 {
		t.Errorf("Diary.ListLimit = %d", cfg.Diary.ListLimit)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("CORS.AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.RateLimit.LoginWindow != 2*time.Minute {
		t.Errorf("RateLimit.LoginWindow = %v", cfg.RateLimit.LoginWindow)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Database.DSN() != "postgres://u:p@localhost/db" {
		t.Errorf("DSN() = %q", cfg.Database.DSN())
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"SESSION_SECRET": ""}},
		{"bad port", map[string]string{"SESSION_SECRET": "s", "SERVER_PORT": "abc"}},
		{"bad driver", map[string]string{"SESSION_SECRET": "s", "DATABASE_DRIVER": "mysql"}},
		{"postgres without url", map[string]string{"SESSION_SECRET": "s", "DATABASE_DRIVER": "postgres", "DATABASE_URL": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("Load() error = nil, want error")
			}
		})
	}
}
