package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Guliveer/tweakslite/internal/platform"
)

const (
	systemFlatpakApps = "/var/lib/flatpak/exports/share/applications"
	userFlatpakApps   = ".local/share/flatpak/exports/share/applications"
)

// DefaultDir returns the autostart directory for the execution context.
// Inside a sandbox XDG_CONFIG_HOME points into the sandbox, so the host
// directory is derived from HOME instead.
func DefaultDir(c platform.Context) (string, error) {
	if c == platform.Native {
		if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
			return filepath.Join(dir, "autostart"), nil
		}
	}
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "autostart"), nil
}

// ApplicationDirs returns the directories holding installed applications,
// highest precedence first.
func ApplicationDirs(c platform.Context) []string {
	home, _ := homeDir()

	var dirs []string
	if c == platform.Sandboxed {
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".local", "share", "applications"))
		}
		dirs = append(dirs, "/usr/local/share/applications", "/usr/share/applications")
	} else {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" && home != "" {
			dataHome = filepath.Join(home, ".local", "share")
		}
		if dataHome != "" {
			dirs = append(dirs, filepath.Join(dataHome, "applications"))
		}
		dataDirs := os.Getenv("XDG_DATA_DIRS")
		if dataDirs == "" {
			dataDirs = "/usr/local/share:/usr/share"
		}
		for _, d := range strings.Split(dataDirs, ":") {
			if d != "" {
				dirs = append(dirs, filepath.Join(d, "applications"))
			}
		}
	}

	if home != "" {
		dirs = append(dirs, filepath.Join(home, userFlatpakApps))
	}
	dirs = append(dirs, systemFlatpakApps)
	return dedupe(dirs)
}

func homeDir() (string, error) {
	if home := os.Getenv("HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return home, nil
}

func dedupe(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := dirs[:0]
	for _, d := range dirs {
		d = filepath.Clean(d)
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
