package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs, read from the environment
// with an optional .env file for local development.
type Config struct {
	Addr          string // listen address
	DBPath        string // sqlite database file
	StoreBackend  string // "sqlite" or "memory"
	SessionSecret string // HMAC key for session cookies; generated if empty
	ResendAPIKey  string // empty means codes are logged instead of emailed
	EmailFrom     string
	Env           string // "development" or "production"
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:          getenv("ADDR", ":8080"),
		DBPath:        getenv("DB_PATH", "tracker.db"),
		StoreBackend:  getenv("STORE", "sqlite"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		EmailFrom:     getenv("EMAIL_FROM", "noreply@qr-track.local"),
		Env:           getenv("ENV", "development"),
	}

	if cfg.StoreBackend != "sqlite" && cfg.StoreBackend != "memory" {
		return nil, fmt.Errorf("invalid STORE %q (use sqlite or memory)", cfg.StoreBackend)
	}
	if cfg.Env != "development" && cfg.Env != "production" {
		return nil, fmt.Errorf("invalid ENV %q (use development or production)", cfg.Env)
	}
	if cfg.Production() && cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required in production")
	}

	return cfg, nil
}

// Production reports whether the server runs with production hardening:
// secure cookies and hard failures on email delivery.
func (c *Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
