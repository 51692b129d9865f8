package desktopentry

import (
	"strings"

	"github.com/Guliveer/tweakslite/internal/keyfile"
)

// Parse reads content into an Entry. Only the [Desktop Entry] group is
// interpreted and the first occurrence of a key wins. Unknown keys are
// ignored, so Parse never fails.
func Parse(path, content string) Entry {
	e := Entry{Path: path, Content: content}

	g := keyfile.Parse(content).Group(Group)
	if g == nil {
		return e
	}
	str := func(key string) string {
		v, _ := g.Lookup(key)
		return v
	}
	flag := func(key string) bool {
		v, _ := g.Lookup(key)
		return strings.EqualFold(v, "true")
	}

	e.Name = str("Name")
	e.Exec = str("Exec")
	e.TryExec = str("TryExec")
	e.Icon = str("Icon")
	e.Description = str("Comment")
	e.Type = str("Type")
	e.NoDisplay = flag("NoDisplay")
	e.Terminal = flag("Terminal")
	e.Hidden = flag("Hidden")
	return e
}
