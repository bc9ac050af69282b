// Package config loads runtime configuration from the environment, with
// .env support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the binaries need to run.
type Config struct {
	// Port the local API listens on.
	Port string
	// BaseURL of the spreadsheet-backed remote store.
	BaseURL string
	// PIN is the shared secret the remote store expects on every call.
	PIN string
	// ResyncDelay is how long after a successful remote write the full
	// resync fires.
	ResyncDelay time.Duration
	// HTTPTimeout bounds every remote call.
	HTTPTimeout time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		BaseURL:     os.Getenv("FINANZAS_BASE_URL"),
		PIN:         os.Getenv("FINANZAS_PIN"),
		ResyncDelay: getMillis("RESYNC_DELAY_MS", 1500),
		HTTPTimeout: getMillis("HTTP_TIMEOUT_MS", 10000),
	}

	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("FINANZAS_BASE_URL is required")
	}
	if cfg.PIN == "" {
		return Config{}, fmt.Errorf("FINANZAS_PIN is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getMillis(key string, fallback int) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return time.Duration(fallback) * time.Millisecond
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms < 0 {
		return time.Duration(fallback) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}
