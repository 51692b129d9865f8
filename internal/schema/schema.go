// Package schema describes the configuration schemas the store can address:
// the enumerated schema names, their canonical key-path prefixes and the
// declared type, default and allowed values of every key.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknown is returned for schema names outside the canonical table.
var ErrUnknown = errors.New("unknown schema")

// Name identifies a schema.
type Name string

const (
	Interface    Name = "interface"
	Background   Name = "background"
	InputSources Name = "input-sources"
	WM           Name = "wm"
	Sound        Name = "sound"
	Mutter       Name = "mutter"
	Shell        Name = "shell"
)

// DefaultRoot is the dconf namespace the prefixes live under.
const DefaultRoot = "/org/gnome/"

// prefixes is the canonical table of key paths relative to the root.
var prefixes = map[Name]string{
	Interface:    "desktop/interface/",
	Background:   "desktop/background/",
	InputSources: "desktop/input-sources/",
	WM:           "desktop/wm/preferences/",
	Sound:        "desktop/sound/",
	Mutter:       "mutter/",
	Shell:        "shell/",
}

// Names returns every schema name in sorted order.
func Names() []Name {
	names := make([]Name, 0, len(prefixes))
	for n := range prefixes {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// ParseName validates a schema name.
func ParseName(s string) (Name, error) {
	n := Name(s)
	if _, ok := prefixes[n]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknown, s)
	}
	return n, nil
}

// Prefix returns the full key-path prefix of n under root, for example
// "/org/gnome/desktop/interface/".
func Prefix(root string, n Name) (string, error) {
	rel, ok := prefixes[n]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknown, string(n))
	}
	return normalizeRoot(root) + rel, nil
}

func normalizeRoot(root string) string {
	if root == "" {
		root = DefaultRoot
	}
	if !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return root
}

// Type is a GVariant type string.
type Type string

const (
	TypeString      Type = "s"
	TypeBoolean     Type = "b"
	TypeDouble      Type = "d"
	TypeStringArray Type = "as"
)

// Key is the declaration of one key.
type Key struct {
	Name string
	Type Type
	// Default holds a string, bool, float64 or []string matching Type.
	Default any
	// Choices is non-empty for enumeration keys.
	Choices []string
}

// IsEnum reports whether the key only accepts Choices.
func (k Key) IsEnum() bool { return len(k.Choices) > 0 }

// Schema is one entry of the catalog.
type Schema struct {
	Name Name
	ID   string
	Keys map[string]Key
}

// Key returns the declaration of key.
func (s *Schema) Key(key string) (Key, bool) {
	k, ok := s.Keys[key]
	return k, ok
}

// KeyNames returns the declared keys in sorted order.
func (s *Schema) KeyNames() []string {
	names := make([]string, 0, len(s.Keys))
	for k := range s.Keys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
