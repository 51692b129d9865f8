package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return []string{
		filepath.Join(dir, "tweakslite", "config.yaml"),
		"/etc/tweakslite/config.yaml",
	}
}

// DefaultPath is where "config write" puts the user configuration.
func DefaultPath() string {
	return configSearchPaths()[0]
}

// DefaultLogPath returns $XDG_CACHE_HOME/tweakslite/tweakslite.log.
func DefaultLogPath() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "tweakslite", "tweakslite.log")
}
