// Package config reads settings from the environment, optionally seeded from
// a .env file. Command-line flags override everything here.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// RefreshInterval is the catalog refresh cadence in TUI mode.
	RefreshInterval time.Duration

	// WaitTimeout bounds the wait on the remote loader thread. 0 waits
	// forever.
	WaitTimeout time.Duration

	// LogPath is the audit log destination ("" disables, "-" is stdout).
	LogPath   string
	LogPretty bool
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		RefreshInterval: getEnvDuration("KENJECT_REFRESH_INTERVAL", 2*time.Second),
		WaitTimeout:     getEnvDuration("KENJECT_WAIT_TIMEOUT", 30*time.Second),
		LogPath:         getEnv("KENJECT_LOG", ""),
		LogPretty:       getEnvBool("KENJECT_LOG_PRETTY", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
