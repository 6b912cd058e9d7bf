package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// projectConfigNames are checked in the current directory, in order.
var projectConfigNames = []string{"tasklist.toml", ".tasklist.toml"}

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	for _, name := range projectConfigNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.tasklist/tasklist.toml first, then the OS-specific config
// directory.
func findUserConfigFile() string {
	for _, path := range userConfigCandidates() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// UserConfigPath returns the preferred user config file location.
func UserConfigPath() string {
	candidates := userConfigCandidates()
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}

func userConfigCandidates() []string {
	var out []string
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, ".tasklist", "tasklist.toml"))
	}
	if cfgDir := osUserConfigDir(); cfgDir != "" {
		out = append(out, filepath.Join(cfgDir, "tasklist", "tasklist.toml"))
	}
	return out
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DateLayout = DefaultDateLayout
	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = "info"
	cfg.LogFormat = "text"

	cfg.Storage = StorageConfig{
		Backend:        DefaultStorageBackend,
		Key:            DefaultStorageKey,
		Dir:            DefaultDataDir,
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
}

// GetConfigFile returns the config file with the highest precedence that
// was read, or "".
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
