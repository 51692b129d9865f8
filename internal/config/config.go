// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > embedded > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "15s", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all tweakslite configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Command   CommandConfig   `yaml:"command"`
	Sandbox   SandboxConfig   `yaml:"sandbox"`
	Settings  SettingsConfig  `yaml:"settings"`
	Autostart AutostartConfig `yaml:"autostart"`
}

// LoggingConfig holds logging settings. File defaults to the user cache
// directory; setting it to "" disables the file log.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// CommandConfig holds external command settings.
type CommandConfig struct {
	Timeout Duration `yaml:"timeout"`
}

// SandboxConfig controls execution context detection.
type SandboxConfig struct {
	// Mode is "auto", "native" or "sandboxed".
	Mode        string   `yaml:"mode"`
	Marker      string   `yaml:"marker"`
	HostCommand []string `yaml:"host_command"`
}

// SettingsConfig holds settings store settings.
type SettingsConfig struct {
	Root string `yaml:"root"`
	// Keyfile is the in-process store; empty selects the GSettings default.
	Keyfile string `yaml:"keyfile"`
}

// AutostartConfig holds autostart settings.
type AutostartConfig struct {
	// Dir overrides the autostart directory of the execution context.
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "warn",
			File:       DefaultLogPath(),
			MaxSizeMB:  5,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Command: CommandConfig{
			Timeout: Duration{30 * time.Second},
		},
		Sandbox: SandboxConfig{
			Mode:        "auto",
			Marker:      "/.flatpak-info",
			HostCommand: []string{"flatpak-spawn", "--host"},
		},
		Settings: SettingsConfig{
			Root: "/org/gnome/",
		},
	}
}

// CLIOverrides holds values from command-line flags.
// Empty strings are treated as "not set" and skipped.
type CLIOverrides struct {
	LogLevel     string
	Mode         string
	Keyfile      string
	AutostartDir string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.Mode != "" {
		cfg.Sandbox.Mode = cli.Mode
	}
	if cli.Keyfile != "" {
		cfg.Settings.Keyfile = cli.Keyfile
	}
	if cli.AutostartDir != "" {
		cfg.Autostart.Dir = cli.AutostartDir
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("TWEAKS_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if mode := os.Getenv("TWEAKS_MODE"); mode != "" {
		cfg.Sandbox.Mode = mode
	}
	if dir := os.Getenv("TWEAKS_AUTOSTART_DIR"); dir != "" {
		cfg.Autostart.Dir = dir
	}
	if path := os.Getenv("TWEAKS_KEYFILE"); path != "" {
		cfg.Settings.Keyfile = path
	}
}

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Sandbox.Mode) {
	case "auto", "native", "sandboxed":
	default:
		return fmt.Errorf("sandbox mode must be auto, native or sandboxed (got: %s)", c.Sandbox.Mode)
	}
	if c.Command.Timeout.Duration <= 0 {
		return fmt.Errorf("command timeout must be positive (got: %s)", c.Command.Timeout.Duration)
	}
	if !strings.HasPrefix(c.Settings.Root, "/") {
		return fmt.Errorf("settings root must be an absolute path (got: %q)", c.Settings.Root)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	return nil
}
