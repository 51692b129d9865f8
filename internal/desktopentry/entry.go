// Package desktopentry parses freedesktop desktop entries and prepares
// catalog entries for copying into an autostart directory.
package desktopentry

import (
	"path"
	"strings"
)

// Group is the only group Parse interprets.
const Group = "Desktop Entry"

// FallbackIcon is returned by IconName when the entry declares no icon.
const FallbackIcon = "application-x-executable"

// Origin records where an entry was read from.
type Origin int

const (
	// File entries are copied verbatim.
	File Origin = iota
	// Catalog entries come from an application directory and are
	// synthesized before being copied.
	Catalog
)

func (o Origin) String() string {
	if o == Catalog {
		return "catalog"
	}
	return "file"
}

// Entry is a parsed desktop entry. Empty strings mean the key was absent.
type Entry struct {
	Path    string
	Content string

	Name        string
	Exec        string
	TryExec     string
	Icon        string
	Description string
	Type        string

	NoDisplay bool
	Terminal  bool
	Hidden    bool

	Origin Origin
}

// ShouldShow reports whether the entry is meant to be listed.
func (e Entry) ShouldShow() bool {
	return !(e.NoDisplay || e.Terminal || e.Hidden)
}

// DisplayName returns Name, or the last path segment when Name is absent.
func (e Entry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return path.Base(e.Path)
}

// Basename is the file name the entry is installed under.
func (e Entry) Basename() string {
	if e.Path == "" {
		return ""
	}
	return path.Base(e.Path)
}

// IconName resolves Icon to something an icon theme lookup can use.
// Absolute paths and reverse-DNS application ids are kept; other names lose
// everything from the first dot on.
func (e Entry) IconName() string {
	icon := e.Icon
	switch {
	case icon == "":
		return FallbackIcon
	case strings.HasPrefix(icon, "/"):
		return icon
	case strings.HasPrefix(icon, "org."), strings.HasPrefix(icon, "com."):
		return icon
	}
	if name, _, ok := strings.Cut(icon, "."); ok {
		return name
	}
	return icon
}

// Program returns the executable an entry launches: the first word of
// Exec, or of TryExec when Exec is absent.
func (e Entry) Program() string {
	cmd := e.Exec
	if cmd == "" {
		cmd = e.TryExec
	}
	return program(cmd)
}

// program returns the first word of an Exec value. The first word may be
// double quoted, in which case backslash escapes are honoured.
func program(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if !strings.HasPrefix(cmd, `"`) {
		word, _, _ := strings.Cut(cmd, " ")
		return word
	}
	var b strings.Builder
	for i := 1; i < len(cmd); i++ {
		switch c := cmd[i]; {
		case c == '\\' && i+1 < len(cmd):
			i++
			b.WriteByte(cmd[i])
		case c == '"':
			return b.String()
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
