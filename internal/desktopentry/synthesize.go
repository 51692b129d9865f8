package desktopentry

import (
	"errors"
	"path"
	"strings"

	"github.com/Guliveer/tweakslite/internal/keyfile"
)

// PlaceholderExec replaces launch commands that cannot run where the
// autostart entry will be started.
const PlaceholderExec = "true"

var (
	ErrNoName          = errors.New("desktop entry has no Name")
	ErrNotApplication  = errors.New("desktop entry is not of Type=Application")
	ErrNoDesktopHeader = errors.New("content has no [Desktop Entry] group")
)

// Resolver reports whether program can be launched.
type Resolver func(program string) bool

// Synthesize rewrites catalog content so it can be copied into an autostart
// directory. Within [Desktop Entry] it drops Actions, DBusActivatable and
// X- keys, replaces Exec with the placeholder when resolve rejects its
// program (TryExec goes with it), appends a placeholder Exec when there is
// none, and turns icon paths into bare icon names. [Desktop Action] groups
// are dropped. Every other line is kept as is.
func Synthesize(content string, resolve Resolver) (string, error) {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines)+1)

	var (
		group      string
		seenHeader bool
		hasName    bool
		isApp      bool
		hasExec    bool
		replaced   bool
	)

	closeGroup := func() {
		if group == Group && !hasExec {
			out = append(out, "Exec="+PlaceholderExec)
			hasExec = true
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if name, ok := keyfile.GroupHeader(trimmed); ok {
			closeGroup()
			group = name
			if group == Group {
				seenHeader = true
			}
			if strings.HasPrefix(group, "Desktop Action ") {
				continue
			}
			out = append(out, line)
			continue
		}
		if strings.HasPrefix(group, "Desktop Action ") {
			continue
		}
		if group != Group {
			out = append(out, line)
			continue
		}

		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			out = append(out, line)
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case key == "Actions", key == "DBusActivatable", strings.HasPrefix(key, "X-"):
			continue
		case key == "Name":
			hasName = true
		case key == "Type":
			isApp = isApp || value == "Application"
		case key == "Exec":
			if hasExec {
				continue
			}
			hasExec = true
			if resolve != nil && !resolve(program(value)) {
				line = "Exec=" + PlaceholderExec
				replaced = true
			}
		case key == "Icon":
			line = "Icon=" + bareIcon(value)
		}
		out = append(out, line)
	}
	closeGroup()

	switch {
	case !seenHeader:
		return "", ErrNoDesktopHeader
	case !hasName:
		return "", ErrNoName
	case !isApp:
		return "", ErrNotApplication
	}

	if replaced {
		out = dropKey(out, "TryExec")
	}
	return strings.Join(out, "\n"), nil
}

// bareIcon turns "/usr/share/pixmaps/foo.png" into "foo".
func bareIcon(icon string) string {
	if !strings.Contains(icon, "/") {
		return icon
	}
	base := path.Base(icon)
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

func dropKey(lines []string, key string) []string {
	group := ""
	kept := lines[:0]
	for _, line := range lines {
		if name, ok := keyfile.GroupHeader(line); ok {
			group = name
		} else if group == Group {
			if k, _, ok := strings.Cut(strings.TrimSpace(line), "="); ok && strings.TrimSpace(k) == key {
				continue
			}
		}
		kept = append(kept, line)
	}
	return kept
}
