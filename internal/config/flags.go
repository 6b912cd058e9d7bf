package config

import (
	"flag"
)

// flagToField maps flag names to config field names.
var flagToField = map[string]string{
	"date-layout":     "date_layout",
	"log-dir":         "log_dir",
	"log-level":       "log_level",
	"log-format":      "log_format",
	"log-timestamps":  "log_timestamps",
	"log-caller":      "log_caller",
	"storage":         "storage.backend",
	"key":             "storage.key",
	"data-dir":        "storage.dir",
	"sqlite-path":     "storage.sqlite_path",
	"redis-url":       "storage.redis_url",
	"redis-addr":      "storage.redis_addr",
	"redis-password":  "storage.redis_password",
	"redis-db":        "storage.redis_db",
	"storage-timeout": "storage.timeout_seconds",
}

// parseFlags defines global flags on fs, bound to cfg, and parses args.
// Flag defaults are the values loaded so far, so unset flags change nothing.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasklist", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.DateLayout, "date-layout", cfg.DateLayout, "Go time layout for displayed deadlines")

	// Logging
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	// Storage
	st := &cfg.Storage
	fs.StringVar(&st.Backend, "storage", st.Backend, "Storage backend (file, sqlite, redis, memory)")
	fs.StringVar(&st.Key, "key", st.Key, "Storage key for the task list")
	fs.StringVar(&st.Dir, "data-dir", st.Dir, "Data directory for file and sqlite storage")
	fs.StringVar(&st.SQLitePath, "sqlite-path", st.SQLitePath, "SQLite database path (default <data-dir>/tasklist.db)")
	fs.StringVar(&st.RedisURL, "redis-url", st.RedisURL, "Redis URL (redis://[:password@]host:port/db)")
	fs.StringVar(&st.RedisAddr, "redis-addr", st.RedisAddr, "Redis address host:port")
	fs.StringVar(&st.RedisPassword, "redis-password", st.RedisPassword, "Redis password")
	fs.IntVar(&st.RedisDB, "redis-db", st.RedisDB, "Redis database number")
	fs.IntVar(&st.TimeoutSeconds, "storage-timeout", st.TimeoutSeconds, "Storage operation timeout (seconds, 0 = none)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if field, ok := flagToField[f.Name]; ok {
				sources[field] = SourceFlag
			}
		})
	}
	return nil
}
