package config

import "time"

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultDateLayout     = "02.01.2006, 15:04:05"
	DefaultLogDir         = "~/.tasklist/logs"
	DefaultDataDir        = "~/.tasklist"
	DefaultStorageBackend = "file"
	DefaultStorageKey     = "lab-b-todo-tasks"
	DefaultTimeoutSeconds = 5
)

// Config holds the full configuration for tasklist.
type Config struct {
	// DateLayout is the Go time layout used to display deadlines.
	DateLayout string `toml:"date_layout"`

	// Logging configuration
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	Storage StorageConfig `toml:"storage"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// StorageConfig selects the durable slot backing the task list.
type StorageConfig struct {
	Backend        string `toml:"backend"` // file, sqlite, redis or memory
	Key            string `toml:"key"`
	Dir            string `toml:"dir"`
	SQLitePath     string `toml:"sqlite_path"`
	RedisURL       string `toml:"redis_url"`
	RedisAddr      string `toml:"redis_addr"`
	RedisPassword  string `toml:"redis_password"`
	RedisDB        int    `toml:"redis_db"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-operation storage timeout.
func (s StorageConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}
