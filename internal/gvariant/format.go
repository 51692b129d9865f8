// Package gvariant reads and writes the subset of the GVariant text format
// used by dconf and the GSettings keyfile backend: strings, booleans,
// doubles, integers and arrays of strings.
package gvariant

import (
	"math"
	"strconv"
	"strings"
)

// FormatString quotes s with single quotes. Embedded quotes, backslashes
// and control characters are escaped so the result always parses back to s.
func FormatString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				b.WriteString(`\u` + leftPad(strconv.FormatInt(int64(r), 16), 4))
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func leftPad(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}
	return s
}

// FormatBool returns "true" or "false".
func FormatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// FormatDouble returns the shortest decimal form of v that GVariant still
// reads as a double, so 1 becomes "1.0" rather than the integer "1".
func FormatDouble(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// FormatStringArray renders an array of strings. The empty array carries an
// explicit type annotation because "[]" alone has no type.
func FormatStringArray(values []string) string {
	if len(values) == 0 {
		return "@as []"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = FormatString(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
