package settings

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Guliveer/tweakslite/internal/schema"
)

var (
	// ErrUnknownKey is returned for keys the schema does not declare.
	ErrUnknownKey = errors.New("unknown key")
	// ErrKindMismatch is returned when a caller reads or writes a key with
	// a kind other than the declared one. Values are never coerced.
	ErrKindMismatch = errors.New("value kind does not match key type")
	// ErrInvalidChoice is returned when an enumeration key is given a value
	// outside its choices.
	ErrInvalidChoice = errors.New("value is not one of the allowed choices")
)

// Range describes the values a key accepts. Type is "enum" for
// enumerations and "type" for every other key.
type Range struct {
	Type   string
	Values []string
}

// Handle is an open, in-process view of one schema in the store.
type Handle interface {
	Schema() *schema.Schema
	// Get returns the current value, or the default when the key is unset.
	Get(key string) (Value, error)
	Set(key string, v Value) error
	Reset(key string) error
	// Default returns the declared default; false when there is none.
	Default(key string) (Value, bool)
	Range(key string) (Range, error)
}

// Source opens handles on the in-process store.
type Source interface {
	Open(s *schema.Schema) (Handle, error)
}

// declaredSchema answers the schema-only questions every Handle shares.
type declaredSchema struct {
	schema *schema.Schema
}

func (d declaredSchema) Schema() *schema.Schema { return d.schema }

func (d declaredSchema) declared(key string) (schema.Key, Kind, error) {
	k, ok := d.schema.Key(key)
	if !ok {
		return schema.Key{}, 0, fmt.Errorf("%w %q in schema %s", ErrUnknownKey, key, d.schema.Name)
	}
	kind, err := KindOf(k.Type)
	if err != nil {
		return schema.Key{}, 0, err
	}
	return k, kind, nil
}

// validate checks v against the declared kind and, for enumerations, the
// declared choices.
func (d declaredSchema) validate(key string, v Value) error {
	decl, kind, err := d.declared(key)
	if err != nil {
		return err
	}
	if v.Kind() != kind {
		return fmt.Errorf("%w: %s.%s is a %s, got %s", ErrKindMismatch, d.schema.Name, key, kind, v.Kind())
	}
	if decl.IsEnum() && !slices.Contains(decl.Choices, v.Str()) {
		return fmt.Errorf("%w: %q for %s.%s", ErrInvalidChoice, v.Str(), d.schema.Name, key)
	}
	return nil
}

func (d declaredSchema) Default(key string) (Value, bool) {
	decl, _, err := d.declared(key)
	if err != nil {
		return Value{}, false
	}
	v, err := fromDefault(decl)
	if err != nil {
		return Value{}, false
	}
	return v, true
}

func (d declaredSchema) Range(key string) (Range, error) {
	decl, _, err := d.declared(key)
	if err != nil {
		return Range{}, err
	}
	if decl.IsEnum() {
		return Range{Type: "enum", Values: slices.Clone(decl.Choices)}, nil
	}
	return Range{Type: "type"}, nil
}
