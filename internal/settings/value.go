package settings

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Guliveer/tweakslite/internal/gvariant"
	"github.com/Guliveer/tweakslite/internal/schema"
)

// Kind is the type tag of a Value.
type Kind int

const (
	KindString Kind = iota
	KindBoolean
	KindDouble
	KindStringList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindDouble:
		return "double"
	case KindStringList:
		return "string list"
	default:
		return "unknown"
	}
}

// KindOf maps a declared schema type to a Kind.
func KindOf(t schema.Type) (Kind, error) {
	switch t {
	case schema.TypeString:
		return KindString, nil
	case schema.TypeBoolean:
		return KindBoolean, nil
	case schema.TypeDouble:
		return KindDouble, nil
	case schema.TypeStringArray:
		return KindStringList, nil
	default:
		return 0, fmt.Errorf("unsupported schema type %q", t)
	}
}

// Value is a tagged configuration value. Only the field matching Kind is
// meaningful.
type Value struct {
	kind Kind
	s    string
	b    bool
	d    float64
	list []string
}

// String, Bool, Double and StringList construct values of each kind.
func String(s string) Value  { return Value{kind: KindString, s: s} }
func Bool(b bool) Value      { return Value{kind: KindBoolean, b: b} }
func Double(d float64) Value { return Value{kind: KindDouble, d: d} }
func StringList(l []string) Value {
	return Value{kind: KindStringList, list: slices.Clone(l)}
}

// Kind returns the type tag.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string of a KindString value.
func (v Value) Str() string { return v.s }

// Bool returns the boolean of a KindBoolean value.
func (v Value) Bool() bool { return v.b }

// Double returns the number of a KindDouble value.
func (v Value) Double() float64 { return v.d }

// List returns a copy of the list of a KindStringList value.
func (v Value) List() []string {
	if v.list == nil {
		return []string{}
	}
	return slices.Clone(v.list)
}

// Equal reports structural equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindBoolean:
		return v.b == o.b
	case KindDouble:
		return v.d == o.d
	case KindStringList:
		return slices.Equal(v.list, o.list)
	}
	return false
}

// GVariant serializes the value in GVariant text format, the form dconf
// accepts on its command line and the keyfile backend stores.
func (v Value) GVariant() string {
	switch v.kind {
	case KindBoolean:
		return gvariant.FormatBool(v.b)
	case KindDouble:
		return gvariant.FormatDouble(v.d)
	case KindStringList:
		return gvariant.FormatStringArray(v.list)
	default:
		return gvariant.FormatString(v.s)
	}
}

// String renders the value for humans: strings unquoted, lists one per line.
func (v Value) String() string {
	switch v.kind {
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindDouble:
		return strconv.FormatFloat(v.d, 'g', -1, 64)
	case KindStringList:
		return strings.Join(v.list, "\n")
	default:
		return v.s
	}
}

// ParseGVariant decodes text of the given kind.
func ParseGVariant(kind Kind, text string) (Value, error) {
	switch kind {
	case KindString:
		s, err := gvariant.ParseString(text)
		return String(s), err
	case KindBoolean:
		b, err := gvariant.ParseBool(text)
		return Bool(b), err
	case KindDouble:
		d, err := gvariant.ParseDouble(text)
		return Double(d), err
	case KindStringList:
		l, err := gvariant.ParseStringArray(text)
		return StringList(l), err
	default:
		return Value{}, fmt.Errorf("unsupported kind %v", kind)
	}
}

// ParseInput decodes user input of the given kind: strings are taken
// verbatim, booleans and doubles use Go syntax, lists accept either
// GVariant array syntax or a comma-separated list.
func ParseInput(kind Kind, text string) (Value, error) {
	switch kind {
	case KindString:
		return String(text), nil
	case KindBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return Value{}, fmt.Errorf("invalid boolean %q", text)
		}
		return Bool(b), nil
	case KindDouble:
		d, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q", text)
		}
		return Double(d), nil
	case KindStringList:
		trimmed := strings.TrimSpace(text)
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "@") {
			return ParseGVariant(KindStringList, trimmed)
		}
		if trimmed == "" {
			return StringList(nil), nil
		}
		parts := strings.Split(trimmed, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return StringList(parts), nil
	default:
		return Value{}, fmt.Errorf("unsupported kind %v", kind)
	}
}

// fromDefault converts a catalog default into a Value.
func fromDefault(k schema.Key) (Value, error) {
	kind, err := KindOf(k.Type)
	if err != nil {
		return Value{}, err
	}
	switch kind {
	case KindString:
		s, _ := k.Default.(string)
		return String(s), nil
	case KindBoolean:
		b, _ := k.Default.(bool)
		return Bool(b), nil
	case KindDouble:
		d, _ := k.Default.(float64)
		return Double(d), nil
	default:
		l, _ := k.Default.([]string)
		return StringList(l), nil
	}
}

// MarkDefaultInList returns a copy of values where the first element equal
// to defaultValue carries a " (default)" suffix.
func MarkDefaultInList(values []string, defaultValue string) []string {
	out := slices.Clone(values)
	for i, v := range out {
		if v == defaultValue {
			out[i] = v + " (default)"
			break
		}
	}
	return out
}
