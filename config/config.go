// Package config loads the server configuration from environment variables.
// A .env file in the working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config groups every server setting.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Session   SessionConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Diary     DiaryConfig
	Log       LogConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig selects the SQL driver.
type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	Path   string // SQLite file path
	URL    string // PostgreSQL DSN
}

// SessionConfig controls session tokens and password hashing.
type SessionConfig struct {
	Secret     string // token signing key, required
	TTL        time.Duration
	CacheTTL   time.Duration
	BcryptCost int
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig configures the login limiter.
type RateLimitConfig struct {
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

// RedisConfig enables the shared session cache when URL is set.
type RedisConfig struct {
	URL string
}

// DiaryConfig holds diary listing settings.
type DiaryConfig struct {
	ListLimit int
}

// LogConfig selects the log encoder.
type LogConfig struct {
	Development bool
}

// Load builds a Config from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getInt("SERVER_PORT", 9090)
	if err != nil {
		return nil, err
	}
	ttlDays, err := getInt("SESSION_TTL_DAYS", 30)
	if err != nil {
		return nil, err
	}
	cacheSeconds, err := getInt("SESSION_CACHE_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	bcryptCost, err := getInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := getInt("LOGIN_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}
	windowSeconds, err := getInt("LOGIN_WINDOW_SECONDS", 120)
	if err != nil {
		return nil, err
	}
	listLimit, err := getInt("DIARY_LIST_LIMIT", 20)
	if err != nil {
		return nil, err
	}
	development, err := strconv.ParseBool(getEnv("LOG_DEVELOPMENT", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_DEVELOPMENT: %w", err)
	}

	secret := getEnv("SESSION_SECRET", "")
	if secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	driver := strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite"))
	if driver != "sqlite" && driver != "postgres" {
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q: want sqlite or postgres", driver)
	}
	dbURL := getEnv("DATABASE_URL", "")
	if driver == "postgres" && dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER=postgres")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Driver: driver,
			Path:   getEnv("DATABASE_PATH", "./data/mysupport.db"),
			URL:    dbURL,
		},
		Session: SessionConfig{
			Secret:     secret,
			TTL:        time.Duration(ttlDays) * 24 * time.Hour,
			CacheTTL:   time.Duration(cacheSeconds) * time.Second,
			BcryptCost: bcryptCost,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		RateLimit: RateLimitConfig{
			LoginMaxAttempts: maxAttempts,
			LoginWindow:      time.Duration(windowSeconds) * time.Second,
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Diary: DiaryConfig{
			ListLimit: listLimit,
		},
		Log: LogConfig{
			Development: development,
		},
	}

	return cfg, nil
}

// Addr returns the listen address, e.g. "0.0.0.0:9090".
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN returns the data source for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.URL
	}
	return c.Path
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, strconv.Itoa(fallback))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
