// Package platform decides which execution context the process runs in and
// describes the host for diagnostics.
//
// The context is probed once at start-up and then fixed for the lifetime of
// every component built from it.
package platform

import (
	"fmt"
	"os"
	"strings"
)

// DefaultMarker is the file flatpak places at the root of every sandbox.
const DefaultMarker = "/.flatpak-info"

// Context is the execution context of the process.
type Context int

const (
	Native    Context = iota // Direct access to the store and the filesystem
	Sandboxed                // Host resources reachable only through host commands
)

func (c Context) String() string {
	switch c {
	case Native:
		return "native"
	case Sandboxed:
		return "sandboxed"
	default:
		return "unknown"
	}
}

// ParseContext parses "native" or "sandboxed".
func ParseContext(s string) (Context, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "native":
		return Native, nil
	case "sandboxed":
		return Sandboxed, nil
	default:
		return 0, fmt.Errorf("invalid execution context %q (expected \"native\" or \"sandboxed\")", s)
	}
}

// Detect reports Sandboxed when the marker path exists. An empty marker
// means DefaultMarker.
func Detect(marker string) Context {
	if marker == "" {
		marker = DefaultMarker
	}
	if _, err := os.Stat(marker); err == nil {
		return Sandboxed
	}
	return Native
}

// Resolve applies a configured mode on top of detection. Mode "auto" (or
// empty) probes the marker; "native" and "sandboxed" force the context.
func Resolve(mode, marker string) (Context, error) {
	if mode == "" || strings.EqualFold(mode, "auto") {
		return Detect(marker), nil
	}
	return ParseContext(mode)
}
