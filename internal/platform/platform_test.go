package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseContext(t *testing.T) {
	tests := []struct {
		input   string
		want    Context
		wantErr bool
	}{
		{"native", Native, false},
		{"sandboxed", Sandboxed, false},
		{"Sandboxed", Sandboxed, false},
		{" native ", Native, false},
		{"flatpak", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseContext(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseContext(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseContext(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestContextString(t *testing.T) {
	if Native.String() != "native" || Sandboxed.String() != "sandboxed" {
		t.Errorf("unexpected names %q, %q", Native, Sandboxed)
	}
	if Context(42).String() != "unknown" {
		t.Errorf("Context(42) = %q, want unknown", Context(42))
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, ".flatpak-info")

	if got := Detect(marker); got != Native {
		t.Errorf("Detect without marker = %v, want native", got)
	}
	if err := os.WriteFile(marker, []byte("[Application]\nname=org.example.Tweaks\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := Detect(marker); got != Sandboxed {
		t.Errorf("Detect with marker = %v, want sandboxed", got)
	}
	// Probing twice gives the same answer and leaves the marker alone.
	if got := Detect(marker); got != Sandboxed {
		t.Errorf("second Detect = %v, want sandboxed", got)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("marker disturbed: %v", err)
	}
}

func TestResolve(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "missing")
	tests := []struct {
		mode    string
		want    Context
		wantErr bool
	}{
		{"", Native, false},
		{"auto", Native, false},
		{"AUTO", Native, false},
		{"sandboxed", Sandboxed, false},
		{"native", Native, false},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.mode, marker)
		if (err != nil) != tt.wantErr {
			t.Errorf("Resolve(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestDescribe_ReadsSandboxApp(t *testing.T) {
	marker := filepath.Join(t.TempDir(), ".flatpak-info")
	content := "[Application]\nname=org.example.Tweaks\nruntime=runtime/org.gnome.Platform/x86_64/47\n"
	if err := os.WriteFile(marker, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	info, _ := Describe(context.Background(), Sandboxed, marker)
	if info.SandboxApp != "org.example.Tweaks" {
		t.Errorf("SandboxApp = %q, want org.example.Tweaks", info.SandboxApp)
	}
	if info.Context != Sandboxed {
		t.Errorf("Context = %v, want sandboxed", info.Context)
	}
}
