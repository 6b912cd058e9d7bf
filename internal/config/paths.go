package config

import (
	"os"
	"path/filepath"
	"strings"
)

// resolvePath expands $VARS and a leading "~" in a configured path and
// anchors a relative result at root. Empty paths stay empty.
func resolvePath(p, root string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
