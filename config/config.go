package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	Locale        string
	LogLevel      string
	AllowedOrigin string
	SeedFile      string
}

// Load reads a .env file when present, then the process environment.
// The returned Config is usable even when err reports a missing or
// malformed .env file. Load runs before logging is configured, so callers
// log err themselves.
func Load() (Config, error) {
	err := godotenv.Load()
	return FromEnv(), err
}

// FromEnv reads the NOTES_* variables, applying defaults for unset ones.
func FromEnv() Config {
	return Config{
		Addr:          getenv("NOTES_ADDR", ":8080"),
		Locale:        getenv("NOTES_LOCALE", "en"),
		LogLevel:      getenv("NOTES_LOG_LEVEL", "info"),
		AllowedOrigin: getenv("NOTES_ALLOWED_ORIGIN", "*"),
		SeedFile:      getenv("NOTES_SEED_FILE", ""),
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
