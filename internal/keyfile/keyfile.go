// Package keyfile reads and writes INI-like key files: "[Group]" headers
// followed by "Key=Value" lines, as used by desktop entries and by the
// GSettings keyfile backend.
//
// Parsing is deliberately forgiving. Blank lines, "#" comments and lines
// without "=" are dropped, lines before the first group are ignored, and
// repeated groups are merged. Lookups return the first occurrence of a key.
package keyfile

import (
	"strings"
)

// Entry is a single Key=Value line.
type Entry struct {
	Key   string
	Value string
}

// Group is a named section of a Document.
type Group struct {
	Name    string
	Entries []Entry
}

// Lookup returns the first value stored under key.
func (g *Group) Lookup(key string) (string, bool) {
	for _, e := range g.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Document is an ordered collection of groups.
type Document struct {
	Groups []*Group
}

// Parse reads content into a Document.
func Parse(content string) *Document {
	doc := &Document{}
	var current *Group
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			current = doc.group(groupName(line), true)
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") || current == nil {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		current.Entries = append(current.Entries, Entry{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		})
	}
	return doc
}

// GroupHeader returns the group name of a "[Name]" line and whether the
// line is a header at all.
func GroupHeader(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") {
		return "", false
	}
	return groupName(line), true
}

// groupName strips the brackets of a header. A header without the closing
// bracket keeps its raw text so it never matches a real group name.
func groupName(line string) string {
	if !strings.HasSuffix(line, "]") {
		return line
	}
	return line[1 : len(line)-1]
}

// Group returns the named group, or nil.
func (d *Document) Group(name string) *Group {
	return d.group(name, false)
}

func (d *Document) group(name string, create bool) *Group {
	for _, g := range d.Groups {
		if g.Name == name {
			return g
		}
	}
	if !create {
		return nil
	}
	g := &Group{Name: name}
	d.Groups = append(d.Groups, g)
	return g
}

// Lookup returns the first value of key in group.
func (d *Document) Lookup(group, key string) (string, bool) {
	g := d.Group(group)
	if g == nil {
		return "", false
	}
	return g.Lookup(key)
}

// Set replaces every occurrence of key in group with a single entry holding
// value, creating the group when needed.
func (d *Document) Set(group, key, value string) {
	g := d.group(group, true)
	kept := g.Entries[:0]
	replaced := false
	for _, e := range g.Entries {
		if e.Key != key {
			kept = append(kept, e)
			continue
		}
		if !replaced {
			kept = append(kept, Entry{Key: key, Value: value})
			replaced = true
		}
	}
	if !replaced {
		kept = append(kept, Entry{Key: key, Value: value})
	}
	g.Entries = kept
}

// Delete removes key from group and reports whether it was present. Groups
// left empty are dropped.
func (d *Document) Delete(group, key string) bool {
	g := d.Group(group)
	if g == nil {
		return false
	}
	kept := g.Entries[:0]
	for _, e := range g.Entries {
		if e.Key != key {
			kept = append(kept, e)
		}
	}
	removed := len(kept) != len(g.Entries)
	g.Entries = kept
	if len(g.Entries) == 0 {
		d.removeGroup(group)
	}
	return removed
}

func (d *Document) removeGroup(name string) {
	groups := d.Groups[:0]
	for _, g := range d.Groups {
		if g.Name != name {
			groups = append(groups, g)
		}
	}
	d.Groups = groups
}

// String serializes the document. Groups are separated by a blank line.
func (d *Document) String() string {
	var b strings.Builder
	for i, g := range d.Groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("[" + g.Name + "]\n")
		for _, e := range g.Entries {
			b.WriteString(e.Key + "=" + e.Value + "\n")
		}
	}
	return b.String()
}
