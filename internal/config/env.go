package config

import (
	"os"
	"strconv"
	"strings"
)

// envPrefix prefixes every tasklist environment variable.
const envPrefix = "TASKLIST_"

// loadFromEnv overrides config from TASKLIST_* environment variables.
// REDIS_URL is honored when TASKLIST_REDIS_URL is unset.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	mark := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}
	str := func(name, field string, target *string) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*target = v
			mark(field)
		}
	}
	boolean := func(name, field string, target *bool) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*target = boolFromString(v)
			mark(field)
		}
	}
	integer := func(name, field string, target *int) {
		if v := os.Getenv(envPrefix + name); v != "" {
			if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*target = i
				mark(field)
			}
		}
	}

	str("DATE_LAYOUT", "date_layout", &cfg.DateLayout)

	// Logging configuration
	str("LOG_DIR", "log_dir", &cfg.LogDir)
	str("LOG_LEVEL", "log_level", &cfg.LogLevel)
	str("LOG_FORMAT", "log_format", &cfg.LogFormat)
	boolean("LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	boolean("LOG_CALLER", "log_caller", &cfg.LogCaller)

	// Storage
	str("STORAGE", "storage.backend", &cfg.Storage.Backend)
	str("STORAGE_KEY", "storage.key", &cfg.Storage.Key)
	str("DATA_DIR", "storage.dir", &cfg.Storage.Dir)
	str("SQLITE_PATH", "storage.sqlite_path", &cfg.Storage.SQLitePath)
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Storage.RedisURL = v
		mark("storage.redis_url")
	}
	str("REDIS_URL", "storage.redis_url", &cfg.Storage.RedisURL)
	str("REDIS_ADDR", "storage.redis_addr", &cfg.Storage.RedisAddr)
	str("REDIS_PASSWORD", "storage.redis_password", &cfg.Storage.RedisPassword)
	integer("REDIS_DB", "storage.redis_db", &cfg.Storage.RedisDB)
	integer("STORAGE_TIMEOUT", "storage.timeout_seconds", &cfg.Storage.TimeoutSeconds)
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
