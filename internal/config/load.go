package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/tasklist-go/internal/logging"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.tasklist/tasklist.toml or OS-specific config dir)
// 3. Project config file (tasklist.toml or .tasklist.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := load(fs, args, nil)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}
	return load(fs, args, sources)
}

func load(fs *flag.FlagSet, args []string, sources map[string]ConfigSource) (*ConfigWithSources, error) {
	cfg := &Config{}
	var files []string

	// 1. Set defaults
	setDefaults(cfg)

	// 2. User config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
		files = append(files, userConfigFile)
	}

	// 3. Project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
		files = append(files, projectConfigFile)
	}

	// 4. Environment
	loadFromEnv(cfg, sources)

	// 5. CLI flags
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{Config: cfg, Sources: sources, Files: files}, nil
}

// configFields returns the configurable field names used for source tracking.
func configFields() []string {
	return []string{
		"date_layout",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"storage.backend",
		"storage.key",
		"storage.dir",
		"storage.sqlite_path",
		"storage.redis_url",
		"storage.redis_addr",
		"storage.redis_password",
		"storage.redis_db",
		"storage.timeout_seconds",
	}
}

// loadConfigFile decodes a TOML file over cfg. Keys present in the file are
// recorded in sources when it is non-nil.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if sources == nil {
		return nil
	}
	for _, field := range configFields() {
		if md.IsDefined(strings.Split(field, ".")...) {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig computes derived values and validates settings.
func finalizeConfig(cfg *Config) error {
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	cfg.LogDir = resolvePath(cfg.LogDir, cfg.ProjectRoot)
	cfg.Storage.Dir = resolvePath(cfg.Storage.Dir, cfg.ProjectRoot)
	cfg.Storage.SQLitePath = resolvePath(cfg.Storage.SQLitePath, cfg.ProjectRoot)
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))

	if strings.TrimSpace(cfg.DateLayout) == "" {
		cfg.DateLayout = DefaultDateLayout
	}
	if strings.TrimSpace(cfg.Storage.Key) == "" {
		return fmt.Errorf("storage.key must not be empty")
	}
	if cfg.Storage.TimeoutSeconds < 0 {
		return fmt.Errorf("storage.timeout_seconds must be >= 0, got %d", cfg.Storage.TimeoutSeconds)
	}
	switch cfg.Storage.Backend {
	case "file", "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("storage.backend must be file, sqlite, redis or memory, got %q", cfg.Storage.Backend)
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("log_level must be debug, info, warn, error or fatal, got %q", cfg.LogLevel)
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		return fmt.Errorf("log_format must be text, json or logfmt, got %q", cfg.LogFormat)
	}
	return nil
}
