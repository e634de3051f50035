// Package config loads the fpctl/fpserver process configuration from the
// environment (optionally via a .env file), following the teacher's
// fail-fast LoadOAuthConfig pattern: required settings missing a default
// return a clear error instead of silently zero-valuing.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// StoreBackend selects which PageStore driver Open wires up.
type StoreBackend string

const (
	BackendSQLite   StoreBackend = "sqlite"
	BackendPostgres StoreBackend = "postgres"
)

// Config holds the process-wide settings read from the environment.
type Config struct {
	StoreBackend StoreBackend
	StoreDSN     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogFile  string

	HTTPAddr string

	OTLPEndpoint string
}

// Load reads a .env file if present (ignored if missing, matching the
// teacher's godotenv.Load() call in cmd/cli/main.go) and then populates
// Config from the environment, applying the same defaults the teacher's
// database/cache initializers use.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StoreBackend:  StoreBackend(getEnvOrDefault("FP_STORE_BACKEND", string(BackendSQLite))),
		StoreDSN:      getEnvOrDefault("FP_STORE_DSN", "fingerprints.db"),
		RedisAddr:     getEnvOrDefault("FP_REDIS_ADDR", ""),
		RedisPassword: os.Getenv("FP_REDIS_PASSWORD"),
		LogLevel:      getEnvOrDefault("FP_LOG_LEVEL", "info"),
		LogFile:       getEnvOrDefault("FP_LOG_FILE", "fpserver.log"),
		HTTPAddr:      getEnvOrDefault("FP_HTTP_ADDR", ":8080"),
		OTLPEndpoint:  os.Getenv("FP_OTLP_ENDPOINT"),
	}

	if cfg.StoreBackend != BackendSQLite && cfg.StoreBackend != BackendPostgres {
		return nil, fmt.Errorf("config: FP_STORE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendPostgres, cfg.StoreBackend)
	}

	redisDB, err := getEnvIntOrDefault("FP_REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.RedisDB = redisDB

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q: %w", key, v, err)
	}
	return n, nil
}
