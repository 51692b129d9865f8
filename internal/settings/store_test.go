package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Guliveer/tweakslite/internal/platform"
	"github.com/Guliveer/tweakslite/internal/runner"
	"github.com/Guliveer/tweakslite/internal/schema"
)

func builtin(t *testing.T) *schema.Catalog {
	t.Helper()
	c, err := schema.Builtin()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func newNativeStore(t *testing.T) *Store {
	t.Helper()
	logger := zap.NewNop()
	return New(builtin(t), NewKeyfileSource("", "", logger), NativeBackend{}, logger)
}

// fakeExecutor records host commands and, when set, runs a hook before
// answering so tests can observe the store at mirror time.
type fakeExecutor struct {
	commands []runner.Command
	fail     bool
	hook     func()
}

func (f *fakeExecutor) Output(_ context.Context, cmd runner.Command) (string, bool) {
	f.commands = append(f.commands, cmd)
	if f.hook != nil {
		f.hook()
	}
	return "", !f.fail
}

// countingSource counts Open calls.
type countingSource struct {
	Source
	opens int
}

func (c *countingSource) Open(s *schema.Schema) (Handle, error) {
	c.opens++
	return c.Source.Open(s)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newNativeStore(t)

	if err := s.SetString(ctx, schema.Interface, "gtk-theme", "Yaru-dark"); err != nil {
		t.Fatal(err)
	}
	if got := s.GetString(schema.Interface, "gtk-theme"); got != "Yaru-dark" {
		t.Errorf("gtk-theme = %q", got)
	}

	if err := s.SetBoolean(ctx, schema.Interface, "enable-animations", false); err != nil {
		t.Fatal(err)
	}
	if s.GetBoolean(schema.Interface, "enable-animations") {
		t.Error("enable-animations = true, want false")
	}

	if err := s.SetDouble(ctx, schema.Interface, "text-scaling-factor", 1.25); err != nil {
		t.Fatal(err)
	}
	if got := s.GetDouble(schema.Interface, "text-scaling-factor"); got != 1.25 {
		t.Errorf("text-scaling-factor = %v", got)
	}

	want := []string{"caps:escape", "compose:ralt"}
	if err := s.SetStringList(ctx, schema.InputSources, "xkb-options", want); err != nil {
		t.Fatal(err)
	}
	if got := s.GetStringList(schema.InputSources, "xkb-options"); !slices.Equal(got, want) {
		t.Errorf("xkb-options = %v, want %v", got, want)
	}
}

func TestStore_StringWithQuotesRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := newNativeStore(t)

	v := `it's a "theme" \ with slashes`
	if err := s.SetString(ctx, schema.Interface, "gtk-theme", v); err != nil {
		t.Fatal(err)
	}
	if got := s.GetString(schema.Interface, "gtk-theme"); got != v {
		t.Errorf("gtk-theme = %q, want %q", got, v)
	}
}

func TestStore_ResetRestoresDefault(t *testing.T) {
	ctx := context.Background()
	s := newNativeStore(t)

	if err := s.SetString(ctx, schema.Interface, "color-scheme", "prefer-dark"); err != nil {
		t.Fatal(err)
	}
	if s.IsValueDefault(schema.Interface, "color-scheme") {
		t.Error("IsValueDefault = true after set")
	}
	if err := s.Reset(ctx, schema.Interface, "color-scheme"); err != nil {
		t.Fatal(err)
	}
	def, ok := s.GetDefaultString(schema.Interface, "color-scheme")
	if !ok {
		t.Fatal("no default for color-scheme")
	}
	if got := s.GetString(schema.Interface, "color-scheme"); got != def {
		t.Errorf("color-scheme = %q, want default %q", got, def)
	}
	if !s.IsValueDefault(schema.Interface, "color-scheme") {
		t.Error("IsValueDefault = false after reset")
	}
}

func TestStore_SettingDefaultValueIsDefault(t *testing.T) {
	ctx := context.Background()
	s := newNativeStore(t)

	if err := s.SetBoolean(ctx, schema.Interface, "enable-animations", true); err != nil {
		t.Fatal(err)
	}
	if !s.IsValueDefault(schema.Interface, "enable-animations") {
		t.Error("IsValueDefault = false for a value equal to the default")
	}
}

func TestStore_DefaultGetters(t *testing.T) {
	s := newNativeStore(t)

	if v, ok := s.GetDefaultBoolean(schema.Interface, "enable-animations"); !ok || !v {
		t.Errorf("GetDefaultBoolean = %v, %v", v, ok)
	}
	if v, ok := s.GetDefaultDouble(schema.Interface, "text-scaling-factor"); !ok || v != 1.0 {
		t.Errorf("GetDefaultDouble = %v, %v", v, ok)
	}
	if _, ok := s.GetDefaultString(schema.Interface, "enable-animations"); ok {
		t.Error("GetDefaultString on a boolean key reported a default")
	}
	if _, ok := s.GetDefaultString(schema.Interface, "no-such-key"); ok {
		t.Error("GetDefaultString on an unknown key reported a default")
	}
}

func TestStore_ListIdempotence(t *testing.T) {
	ctx := context.Background()
	s := newNativeStore(t)

	for i := 0; i < 2; i++ {
		if err := s.AddToList(ctx, schema.Shell, "enabled-extensions", "dash@example.org"); err != nil {
			t.Fatal(err)
		}
	}
	got := s.GetStringList(schema.Shell, "enabled-extensions")
	if !slices.Equal(got, []string{"dash@example.org"}) {
		t.Errorf("after double add = %v", got)
	}

	if err := s.RemoveFromList(ctx, schema.Shell, "enabled-extensions", "absent@example.org"); err != nil {
		t.Fatal(err)
	}
	if got := s.GetStringList(schema.Shell, "enabled-extensions"); !slices.Equal(got, []string{"dash@example.org"}) {
		t.Errorf("after removing absent value = %v", got)
	}

	if err := s.RemoveFromList(ctx, schema.Shell, "enabled-extensions", "dash@example.org"); err != nil {
		t.Fatal(err)
	}
	if got := s.GetStringList(schema.Shell, "enabled-extensions"); len(got) != 0 {
		t.Errorf("after remove = %v, want empty", got)
	}
}

func TestStore_AddToListDropsStoredDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newNativeStore(t)

	if err := s.SetStringList(ctx, schema.InputSources, "xkb-options", []string{"caps:none", "caps:none"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddToList(ctx, schema.InputSources, "xkb-options", "compose:ralt"); err != nil {
		t.Fatal(err)
	}
	got := s.GetStringList(schema.InputSources, "xkb-options")
	if want := []string{"caps:none", "compose:ralt"}; !slices.Equal(got, want) {
		t.Errorf("xkb-options = %q, want %q", got, want)
	}

	if err := s.SetStringList(ctx, schema.InputSources, "xkb-options", []string{"b", "a", "b"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddToList(ctx, schema.InputSources, "xkb-options", "a"); err != nil {
		t.Fatal(err)
	}
	if got := s.GetStringList(schema.InputSources, "xkb-options"); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("after adding present item = %q", got)
	}
}

func TestStore_NoopListMutationStillWrites(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{}
	logger := zap.NewNop()
	s := New(builtin(t), NewKeyfileSource("", "", logger), NewSandboxedBackend(exec, logger), logger)

	if err := s.RemoveFromList(ctx, schema.Shell, "enabled-extensions", "absent@example.org"); err != nil {
		t.Fatal(err)
	}
	if len(exec.commands) != 1 {
		t.Fatalf("mirrored %d commands, want 1", len(exec.commands))
	}
}

func TestStore_UnknownSchemaDegrades(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	s := New(builtin(t), NewKeyfileSource("", "", logger), NativeBackend{}, logger)
	bogus := schema.Name("bogus")

	if got := s.GetString(bogus, "k"); got != "" {
		t.Errorf("GetString = %q", got)
	}
	if s.GetBoolean(bogus, "k") {
		t.Error("GetBoolean = true")
	}
	if got := s.GetDouble(bogus, "k"); got != 0 {
		t.Errorf("GetDouble = %v", got)
	}
	if got := s.GetStringList(bogus, "k"); got != nil {
		t.Errorf("GetStringList = %v, want nil", got)
	}
	if _, ok := s.GetAvailableValues(bogus, "k"); ok {
		t.Error("GetAvailableValues reported values")
	}
	if s.IsValueDefault(bogus, "k") {
		t.Error("IsValueDefault = true")
	}
	if err := s.SetString(ctx, bogus, "k", "v"); !errors.Is(err, schema.ErrUnknown) {
		t.Errorf("SetString error = %v, want ErrUnknown", err)
	}
	if err := s.Reset(ctx, bogus, "k"); !errors.Is(err, schema.ErrUnknown) {
		t.Errorf("Reset error = %v, want ErrUnknown", err)
	}
	if logs.FilterMessage("Failed to read setting").Len() != 4 {
		t.Errorf("logged %d read failures, want 4", logs.FilterMessage("Failed to read setting").Len())
	}
}

func TestStore_KindMismatch(t *testing.T) {
	ctx := context.Background()
	s := newNativeStore(t)

	err := s.SetString(ctx, schema.Interface, "enable-animations", "yes")
	if !errors.Is(err, ErrKindMismatch) {
		t.Errorf("SetString on boolean key error = %v, want ErrKindMismatch", err)
	}
	if got := s.GetString(schema.Interface, "enable-animations"); got != "" {
		t.Errorf("GetString on boolean key = %q, want zero value", got)
	}
	if err := s.AddToList(ctx, schema.Interface, "gtk-theme", "x"); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("AddToList on string key error = %v, want ErrKindMismatch", err)
	}
}

func TestStore_UnknownKeyAndInvalidChoice(t *testing.T) {
	ctx := context.Background()
	s := newNativeStore(t)

	if err := s.SetString(ctx, schema.Interface, "no-such-key", "x"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("error = %v, want ErrUnknownKey", err)
	}
	if err := s.SetString(ctx, schema.Interface, "color-scheme", "purple"); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("error = %v, want ErrInvalidChoice", err)
	}
}

func TestStore_AvailableValues(t *testing.T) {
	s := newNativeStore(t)

	values, ok := s.GetAvailableValues(schema.Interface, "color-scheme")
	if !ok {
		t.Fatal("color-scheme reported no values")
	}
	if !slices.Equal(values, []string{"default", "prefer-dark", "prefer-light"}) {
		t.Errorf("values = %v", values)
	}
	if _, ok := s.GetAvailableValues(schema.Interface, "gtk-theme"); ok {
		t.Error("free-form key reported values")
	}
}

func TestStore_HandlesAreCached(t *testing.T) {
	logger := zap.NewNop()
	src := &countingSource{Source: NewKeyfileSource("", "", logger)}
	s := New(builtin(t), src, NativeBackend{}, logger)

	s.GetString(schema.Interface, "gtk-theme")
	s.GetString(schema.Interface, "icon-theme")
	s.GetBoolean(schema.Shell, "disable-user-extensions")
	if src.opens != 2 {
		t.Errorf("opened %d handles, want 2", src.opens)
	}

	s.Close()
	s.GetString(schema.Interface, "gtk-theme")
	if src.opens != 3 {
		t.Errorf("opened %d handles after Close, want 3", src.opens)
	}
}

func TestStore_SandboxedMirrorsBeforeWriting(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{}
	logger := zap.NewNop()
	s := New(builtin(t), NewKeyfileSource("", "", logger), NewSandboxedBackend(exec, logger), logger)

	var seen string
	exec.hook = func() { seen = s.GetString(schema.Interface, "gtk-theme") }

	if err := s.SetString(ctx, schema.Interface, "gtk-theme", "Yaru"); err != nil {
		t.Fatal(err)
	}
	if seen != "Adwaita" {
		t.Errorf("value during mirror = %q, want the previous value", seen)
	}
	if len(exec.commands) != 1 {
		t.Fatalf("mirrored %d commands, want 1", len(exec.commands))
	}
	cmd := exec.commands[0]
	want := []string{"dconf", "write", "/org/gnome/desktop/interface/gtk-theme", "'Yaru'"}
	if !slices.Equal(cmd.Args, want) || !cmd.Host {
		t.Errorf("mirror command = %v (host %v), want %v on host", cmd.Args, cmd.Host, want)
	}
}

func TestStore_SandboxedMirrorFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{fail: true}
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	s := New(builtin(t), NewKeyfileSource("", "", logger), NewSandboxedBackend(exec, logger), logger)

	if err := s.SetDouble(ctx, schema.Interface, "text-scaling-factor", 1.5); err != nil {
		t.Fatalf("SetDouble returned the mirror failure: %v", err)
	}
	if got := s.GetDouble(schema.Interface, "text-scaling-factor"); got != 1.5 {
		t.Errorf("text-scaling-factor = %v, want in-process write to happen", got)
	}
	if logs.FilterMessage("Host mirror failed, keeping in-process value").Len() != 1 {
		t.Error("mirror failure not logged")
	}
}

func TestStore_SandboxedReset(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{}
	logger := zap.NewNop()
	s := New(builtin(t), NewKeyfileSource("", "", logger), NewSandboxedBackend(exec, logger), logger, WithRoot("/org/gnome"))

	if err := s.Reset(ctx, schema.WM, "button-layout"); err != nil {
		t.Fatal(err)
	}
	want := []string{"dconf", "reset", "/org/gnome/desktop/wm/preferences/button-layout"}
	if len(exec.commands) != 1 || !slices.Equal(exec.commands[0].Args, want) {
		t.Errorf("commands = %v, want %v", exec.commands, want)
	}
}

func TestStore_SandboxedRejectsBeforeMirroring(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{}
	logger := zap.NewNop()
	s := New(builtin(t), NewKeyfileSource("", "", logger), NewSandboxedBackend(exec, logger), logger)

	_ = s.SetBoolean(ctx, schema.Interface, "gtk-theme", true)
	if len(exec.commands) != 0 {
		t.Errorf("mirrored %d commands for an invalid write", len(exec.commands))
	}
}

func TestNewBackend(t *testing.T) {
	logger := zap.NewNop()
	if b := NewBackend(platform.Native, nil, logger); b.Context() != platform.Native {
		t.Errorf("native backend context = %v", b.Context())
	}
	if b := NewBackend(platform.Sandboxed, &fakeExecutor{}, logger); b.Context() != platform.Sandboxed {
		t.Errorf("sandboxed backend context = %v", b.Context())
	}
}

func TestKeyfileSource_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "glib-2.0", "settings", "keyfile")
	logger := zap.NewNop()
	s := New(builtin(t), NewKeyfileSource(path, "", logger), NativeBackend{}, logger)

	if err := s.SetString(ctx, schema.Interface, "gtk-theme", "Yaru"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetStringList(ctx, schema.Shell, "favorite-apps", nil); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{
		"[org/gnome/desktop/interface]\ngtk-theme='Yaru'\n",
		"[org/gnome/shell]\nfavorite-apps=@as []\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("keyfile missing %q:\n%s", want, content)
		}
	}

	other := New(builtin(t), NewKeyfileSource(path, "", logger), NativeBackend{}, logger)
	if got := other.GetString(schema.Interface, "gtk-theme"); got != "Yaru" {
		t.Errorf("second store read %q", got)
	}
}

func TestKeyfileSource_SeesExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyfile")
	logger := zap.NewNop()
	s := New(builtin(t), NewKeyfileSource(path, "", logger), NativeBackend{}, logger)

	if got := s.GetString(schema.Interface, "gtk-theme"); got != "Adwaita" {
		t.Fatalf("initial gtk-theme = %q", got)
	}
	edit := "[org/gnome/desktop/interface]\ngtk-theme='HighContrast'\n"
	if err := os.WriteFile(path, []byte(edit), 0644); err != nil {
		t.Fatal(err)
	}
	if got := s.GetString(schema.Interface, "gtk-theme"); got != "HighContrast" {
		t.Errorf("gtk-theme after edit = %q", got)
	}
}

func TestKeyfileSource_MalformedValueFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyfile")
	edit := "[org/gnome/desktop/interface]\nenable-animations=maybe\n"
	if err := os.WriteFile(path, []byte(edit), 0644); err != nil {
		t.Fatal(err)
	}
	logger := zap.NewNop()
	s := New(builtin(t), NewKeyfileSource(path, "", logger), NativeBackend{}, logger)

	if !s.GetBoolean(schema.Interface, "enable-animations") {
		t.Error("malformed value did not fall back to the default true")
	}
}
