package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration read from the environment
type Config struct {
	UserID       string
	DBType       string // "sqlite" (default) or "postgres"
	DBPath       string // file path for sqlite, DSN for postgres
	RemoteURL    string
	RemoteToken  string
	SyncInterval time.Duration
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		UserID:       getEnv("LEXSYNC_USER_ID", "local"),
		DBType:       getEnv("DB_TYPE", "sqlite"),
		DBPath:       getEnv("DB_PATH", ""),
		RemoteURL:    getEnv("REMOTE_URL", ""),
		RemoteToken:  getEnv("REMOTE_TOKEN", ""),
		SyncInterval: time.Duration(getEnvInt("SYNC_INTERVAL_MINUTES", 5)) * time.Minute,
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
