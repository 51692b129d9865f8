package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

// cli runs tweakslite commands natively against temporary directories.
type cli struct {
	t     *testing.T
	base  []string
	dir   string
	auto  string
	apps  string
	store string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_DIRS", filepath.Join(dir, "system"))
	for _, env := range []string{"TWEAKS_LOG_LEVEL", "TWEAKS_MODE", "TWEAKS_AUTOSTART_DIR", "TWEAKS_KEYFILE"} {
		t.Setenv(env, "")
	}

	c := &cli{
		t:     t,
		dir:   dir,
		auto:  filepath.Join(dir, "autostart"),
		apps:  filepath.Join(dir, "data", "applications"),
		store: filepath.Join(dir, "keyfile"),
	}
	c.base = []string{
		"--config", filepath.Join(dir, "absent.yaml"),
		"--mode", "native",
		"--keyfile", c.store,
		"--autostart-dir", c.auto,
	}
	return c
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(append([]string(nil), c.base...), args...))
	err := cmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("tweakslite %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestCLI_SetGetReset(t *testing.T) {
	c := newCLI(t)

	c.mustRun("set", "interface", "color-scheme", "prefer-dark")
	if got := c.mustRun("get", "interface", "color-scheme"); got != "prefer-dark\n" {
		t.Errorf("get = %q", got)
	}

	c.mustRun("set", "interface", "text-scaling-factor", "1.25")
	if got := c.mustRun("get", "interface", "text-scaling-factor"); got != "1.25\n" {
		t.Errorf("get double = %q", got)
	}

	data, err := os.ReadFile(c.store)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "color-scheme='prefer-dark'") {
		t.Errorf("keyfile content:\n%s", data)
	}

	c.mustRun("reset", "interface", "color-scheme")
	got := c.mustRun("default", "interface", "color-scheme")
	if got != "default\n(current value)\n" {
		t.Errorf("default = %q", got)
	}
}

func TestCLI_GetSchemaMarksChangedKeys(t *testing.T) {
	c := newCLI(t)
	c.mustRun("set", "interface", "gtk-theme", "Yaru")

	out := c.mustRun("get", "interface")
	var found bool
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "gtk-theme ") {
			found = true
			if !strings.HasSuffix(line, "Yaru *") {
				t.Errorf("changed key line = %q", line)
			}
		}
		if strings.HasPrefix(line, "icon-theme ") && strings.HasSuffix(line, "*") {
			t.Errorf("unchanged key marked: %q", line)
		}
	}
	if !found {
		t.Errorf("gtk-theme missing from:\n%s", out)
	}
}

func TestCLI_Values(t *testing.T) {
	c := newCLI(t)
	c.mustRun("set", "interface", "color-scheme", "prefer-dark")

	out := c.mustRun("values", "interface", "color-scheme")
	want := "  default (default)\n→ prefer-dark\n  prefer-light\n"
	if out != want {
		t.Errorf("values =\n%s\nwant\n%s", out, want)
	}

	if _, err := c.run("values", "interface", "gtk-theme"); err == nil {
		t.Error("values on a free-form key succeeded")
	}
}

func TestCLI_ListAddRemove(t *testing.T) {
	c := newCLI(t)

	c.mustRun("list", "add", "shell", "enabled-extensions", "one@example.org")
	c.mustRun("list", "add", "shell", "enabled-extensions", "one@example.org")
	c.mustRun("list", "add", "shell", "enabled-extensions", "two@example.org")
	if got := c.mustRun("get", "shell", "enabled-extensions"); got != "one@example.org\ntwo@example.org\n" {
		t.Errorf("after add = %q", got)
	}

	c.mustRun("list", "remove", "shell", "enabled-extensions", "one@example.org")
	if got := c.mustRun("get", "shell", "enabled-extensions"); got != "two@example.org\n" {
		t.Errorf("after remove = %q", got)
	}
}

func TestCLI_Errors(t *testing.T) {
	c := newCLI(t)

	tests := [][]string{
		{"get", "bogus", "key"},
		{"get", "interface", "no-such-key"},
		{"set", "interface", "enable-animations", "sometimes"},
		{"set", "interface", "color-scheme", "purple"},
		{"autostart", "remove", "never-added"},
	}
	for _, args := range tests {
		if _, err := c.run(args...); err == nil {
			t.Errorf("tweakslite %s succeeded", strings.Join(args, " "))
		}
	}
}

func TestCLI_AutostartFromFile(t *testing.T) {
	c := newCLI(t)

	src := filepath.Join(c.dir, "tool.desktop")
	content := "[Desktop Entry]\nType=Application\nName=Tool\nExec=tool\n"
	if err := os.WriteFile(src, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c.mustRun("autostart", "add", src)
	data, err := os.ReadFile(filepath.Join(c.auto, "tool.desktop"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("installed content = %q", data)
	}
	if out := c.mustRun("autostart", "list"); !strings.Contains(out, "tool.desktop") || !strings.Contains(out, "Tool") {
		t.Errorf("list =\n%s", out)
	}

	c.mustRun("autostart", "remove", "tool")
	if out := c.mustRun("autostart", "list"); strings.Contains(out, "tool.desktop") {
		t.Errorf("list after remove =\n%s", out)
	}
}

func TestCLI_AutostartFromCatalog(t *testing.T) {
	c := newCLI(t)
	if err := os.MkdirAll(c.apps, 0755); err != nil {
		t.Fatal(err)
	}
	app := "[Desktop Entry]\nType=Application\nName=Demo\nExec=tweakslite-demo-missing %U\nX-GNOME-UsesNotifications=true\n"
	if err := os.WriteFile(filepath.Join(c.apps, "org.example.Demo.desktop"), []byte(app), 0644); err != nil {
		t.Fatal(err)
	}

	if out := c.mustRun("autostart", "apps"); !strings.Contains(out, "org.example.Demo") {
		t.Errorf("apps =\n%s", out)
	}
	c.mustRun("autostart", "add", "org.example.Demo")

	data, err := os.ReadFile(filepath.Join(c.auto, "org.example.Demo.desktop"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Exec=true") || strings.Contains(string(data), "X-GNOME") {
		t.Errorf("installed content:\n%s", data)
	}
	if out := c.mustRun("autostart", "apps"); !strings.Contains(out, "✓ org.example.Demo") {
		t.Errorf("apps after add =\n%s", out)
	}

	if _, err := c.run("autostart", "add", "org.example.Missing"); err == nil {
		t.Error("adding an unknown application succeeded")
	}
}

func TestCLI_ConfigShowAndWrite(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("config", "show")
	for _, want := range []string{"mode: native", "host_command:", "timeout: 30s", c.auto} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}

	path := filepath.Join(c.dir, "saved.yaml")
	c.mustRun("config", "write", path)
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config not written: %v", err)
	}
}

func TestCLI_Doctor(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("doctor")
	for _, want := range []string{"Context:", "native", c.store, c.auto, "autostart directory usable"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_Version(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "tweakslite dev\n" {
		t.Errorf("version = %q", out.String())
	}
}
