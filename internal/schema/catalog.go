package schema

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed schemas.yaml
var builtinCatalog []byte

// Catalog holds the declarations of every schema.
type Catalog struct {
	schemas map[Name]*Schema
}

type keyDoc struct {
	Type    Type     `yaml:"type"`
	Default any      `yaml:"default"`
	Choices []string `yaml:"choices"`
}

type schemaDoc struct {
	ID   string            `yaml:"id"`
	Keys map[string]keyDoc `yaml:"keys"`
}

// Builtin parses the catalog compiled into the binary.
func Builtin() (*Catalog, error) {
	return LoadCatalog(builtinCatalog)
}

// LoadCatalog parses a YAML catalog. Every schema of the canonical table
// must be declared and every default must match its key type.
func LoadCatalog(data []byte) (*Catalog, error) {
	var docs map[string]schemaDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing schema catalog: %w", err)
	}

	c := &Catalog{schemas: make(map[Name]*Schema, len(docs))}
	for rawName, doc := range docs {
		name, err := ParseName(rawName)
		if err != nil {
			return nil, fmt.Errorf("schema catalog: %w", err)
		}
		s := &Schema{Name: name, ID: doc.ID, Keys: make(map[string]Key, len(doc.Keys))}
		for keyName, kd := range doc.Keys {
			def, err := normalizeDefault(kd.Type, kd.Default)
			if err != nil {
				return nil, fmt.Errorf("schema %s key %s: %w", name, keyName, err)
			}
			s.Keys[keyName] = Key{Name: keyName, Type: kd.Type, Default: def, Choices: kd.Choices}
		}
		c.schemas[name] = s
	}

	for _, n := range Names() {
		if _, ok := c.schemas[n]; !ok {
			return nil, fmt.Errorf("schema catalog: missing schema %q", n)
		}
	}
	return c, nil
}

// Lookup returns the schema called n.
func (c *Catalog) Lookup(n Name) (*Schema, error) {
	s, ok := c.schemas[n]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknown, string(n))
	}
	return s, nil
}

func normalizeDefault(t Type, v any) (any, error) {
	switch t {
	case TypeString:
		if v == nil {
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("default %v is not a string", v)
		}
		return s, nil
	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("default %v is not a boolean", v)
		}
		return b, nil
	case TypeDouble:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		default:
			return nil, fmt.Errorf("default %v is not a number", v)
		}
	case TypeStringArray:
		if v == nil {
			return []string{}, nil
		}
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("default %v is not a list", v)
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("list item %v is not a string", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type %q", t)
	}
}
