package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port    string
	Env     string
	BaseURL string // public origin used when building share and media links

	// Persistence. DATABASE_URL selects the hosted PostgreSQL store; when
	// unset the local SQLite store at SQLitePath is used instead.
	DatabaseURL string
	SQLitePath  string

	// MediaDir is where audio files land. When unset, audio is inlined
	// into the message records as data: URLs.
	MediaDir string

	// DataDir holds small server state (the analytics device id, the
	// default SQLite file).
	DataDir string

	// RedisURL enables the redis-backed rate limiter; unset falls back to
	// in-memory per-IP limiting.
	RedisURL string

	// AmplitudeAPIKey enables analytics; absence disables them entirely.
	AmplitudeAPIKey string

	// Rate limiting
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
	AutoBlockEnabled   bool     // Enable auto-blocking after repeated violations
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       os.Getenv("SQLITE_PATH"),
		MediaDir:         os.Getenv("MEDIA_DIR"),
		DataDir:          getEnv("DATA_DIR", "./data"),
		RedisURL:         os.Getenv("REDIS_URL"),
		AmplitudeAPIKey:  os.Getenv("AMPLITUDE_API_KEY"),
		AutoBlockEnabled: getEnv("AUTO_BLOCK_ENABLED", "false") == "true",
	}

	// Parse whitelist (comma-separated IPs or CIDRs)
	if whitelist := os.Getenv("RATE_LIMIT_WHITELIST"); whitelist != "" {
		for _, entry := range strings.Split(whitelist, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.RateLimitWhitelist = append(cfg.RateLimitWhitelist, entry)
			}
		}
	}

	// In production, require a hosted database and a public origin
	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production")
		}
		if os.Getenv("BASE_URL") == "" {
			panic("BASE_URL is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
