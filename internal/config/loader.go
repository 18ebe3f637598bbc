package config

import (
	"os"
	"path/filepath"
)

// Config file names, in lookup order.
const (
	ConfigFileName    = "revagent.yaml"
	ConfigFileNameAlt = "revagent.yml"
)

// ConfigFileIn returns the config file in dir, or "" when dir has none.
func ConfigFileIn(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// FindProjectRoot returns the nearest directory at or above startDir that
// holds a config file, or "" when none does.
func FindProjectRoot(startDir string) string {
	for dir := filepath.Clean(startDir); ; dir = filepath.Dir(dir) {
		if ConfigFileIn(dir) != "" {
			return dir
		}
		if filepath.Dir(dir) == dir {
			return ""
		}
	}
}
