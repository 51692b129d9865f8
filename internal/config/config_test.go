package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestLoadLayered_CLIOverridesEverything(t *testing.T) {
	embedded := []byte("sandbox:\n  mode: native\nlogging:\n  level: info")
	t.Setenv("TWEAKS_MODE", "auto")
	cli := CLIOverrides{Mode: "sandboxed", LogLevel: "debug"}

	cfg, err := LoadLayered(cli, embedded, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sandbox.Mode != "sandboxed" {
		t.Errorf("Mode = %q, want CLI override", cfg.Sandbox.Mode)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want CLI override", cfg.Logging.Level)
	}
}

func TestLoadLayered_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "autostart:\n  dir: /from/file\nsettings:\n  keyfile: /file/keyfile\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TWEAKS_AUTOSTART_DIR", "/from/env")

	cfg, err := LoadLayered(CLIOverrides{}, nil, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Autostart.Dir != "/from/env" {
		t.Errorf("Dir = %q, want env override", cfg.Autostart.Dir)
	}
	if cfg.Settings.Keyfile != "/file/keyfile" {
		t.Errorf("Keyfile = %q, want file value", cfg.Settings.Keyfile)
	}
}

func TestLoadLayered_FileOverridesEmbed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("command:\n  timeout: 5s\n"), 0644); err != nil {
		t.Fatal(err)
	}
	embedded := []byte("command:\n  timeout: 1m\nsandbox:\n  host_command: [env]\n")

	cfg, err := LoadLayered(CLIOverrides{}, embedded, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Command.Timeout.Duration != 5*time.Second {
		t.Errorf("Timeout = %v, want file value", cfg.Command.Timeout.Duration)
	}
	if !slices.Equal(cfg.Sandbox.HostCommand, []string{"env"}) {
		t.Errorf("HostCommand = %v, want embedded value", cfg.Sandbox.HostCommand)
	}
}

func TestLoadLayered_DefaultsWhenEmpty(t *testing.T) {
	cfg, err := LoadLayered(CLIOverrides{}, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Command.Timeout.Seconds() != 30 {
		t.Errorf("Timeout = %v, want 30s default", cfg.Command.Timeout.Duration)
	}
	if cfg.Sandbox.Marker != "/.flatpak-info" {
		t.Errorf("Marker = %q", cfg.Sandbox.Marker)
	}
	if !slices.Equal(cfg.Sandbox.HostCommand, []string{"flatpak-spawn", "--host"}) {
		t.Errorf("HostCommand = %v", cfg.Sandbox.HostCommand)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadLayered_MissingFileIsIgnored(t *testing.T) {
	if _, err := LoadLayered(CLIOverrides{}, nil, filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatal(err)
	}
}

func TestLoadLayered_InvalidDuration(t *testing.T) {
	if _, err := LoadLayered(CLIOverrides{}, []byte("command:\n  timeout: soon\n"), ""); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestLocate_UsesXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got := Locate(); got != "" && got != "/etc/tweakslite/config.yaml" {
		t.Fatalf("Locate = %q before the file exists", got)
	}

	path := filepath.Join(dir, "tweakslite", "config.yaml")
	if err := WriteConfig(DefaultConfig(), path); err != nil {
		t.Fatal(err)
	}
	if got := Locate(); got != path {
		t.Errorf("Locate = %q, want %q", got, path)
	}
	if DefaultPath() != path {
		t.Errorf("DefaultPath = %q", DefaultPath())
	}
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Autostart.Dir = "/tmp/autostart"
	cfg.Command.Timeout = Duration{45 * time.Second}

	if err := WriteConfig(cfg, path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadLayered(CLIOverrides{}, nil, path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Autostart.Dir != "/tmp/autostart" || got.Command.Timeout.Duration != 45*time.Second {
		t.Errorf("reloaded config = %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"mode", func(c *Config) { c.Sandbox.Mode = "container" }},
		{"timeout", func(c *Config) { c.Command.Timeout = Duration{} }},
		{"root", func(c *Config) { c.Settings.Root = "org/gnome" }},
		{"rotation", func(c *Config) { c.Logging.MaxBackups = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDefaultConfig_LogsToCacheDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	cfg := DefaultConfig()
	want := filepath.Join(dir, "tweakslite", "tweakslite.log")
	if cfg.Logging.File != want {
		t.Errorf("Logging.File = %q, want %q", cfg.Logging.File, want)
	}
}

func TestLoadLayered_EmptyLogFileDisablesFileLog(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cfg, err := LoadLayered(CLIOverrides{}, []byte("logging:\n  file: \"\"\n"), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.File != "" {
		t.Errorf("Logging.File = %q, want empty", cfg.Logging.File)
	}
}
