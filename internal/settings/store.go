// Package settings reads and writes typed configuration keys grouped in
// schemas. Values live in an in-process store; in a sandbox every mutation
// is also mirrored to the host store through host dconf commands.
package settings

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/Guliveer/tweakslite/internal/schema"
)

// Store is the settings facade used by the CLI.
type Store struct {
	catalog *schema.Catalog
	source  Source
	backend Backend
	root    string
	logger  *zap.Logger

	mu      sync.Mutex
	handles map[schema.Name]Handle
}

// Option configures a Store.
type Option func(*Store)

// WithRoot sets the dconf namespace mirrored paths are built under.
func WithRoot(root string) Option {
	return func(s *Store) { s.root = root }
}

// New creates a Store. Handles are opened lazily on first use of a schema.
func New(catalog *schema.Catalog, source Source, backend Backend, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		catalog: catalog,
		source:  source,
		backend: backend,
		root:    schema.DefaultRoot,
		logger:  logger.Named("settings"),
		handles: make(map[schema.Name]Handle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the execution backend the store mirrors through.
func (s *Store) Backend() Backend { return s.backend }

// Close drops every cached handle.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.handles)
}

func (s *Store) handle(name schema.Name) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.handles[name]; ok {
		return h, nil
	}
	sch, err := s.catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	h, err := s.source.Open(sch)
	if err != nil {
		return nil, fmt.Errorf("opening schema %s: %w", name, err)
	}
	s.handles[name] = h
	return h, nil
}

// Keys returns the declared keys of a schema in sorted order.
func (s *Store) Keys(name schema.Name) ([]string, error) {
	sch, err := s.catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	return sch.KeyNames(), nil
}

// KindOf returns the declared kind of a key.
func (s *Store) KindOf(name schema.Name, key string) (Kind, error) {
	sch, err := s.catalog.Lookup(name)
	if err != nil {
		return 0, err
	}
	k, ok := sch.Key(key)
	if !ok {
		return 0, fmt.Errorf("%w %q in schema %s", ErrUnknownKey, key, name)
	}
	return KindOf(k.Type)
}

// Get returns the current value of any key. Unlike the typed getters it
// reports failures.
func (s *Store) Get(name schema.Name, key string) (Value, error) {
	h, err := s.handle(name)
	if err != nil {
		return Value{}, err
	}
	return h.Get(key)
}

func (s *Store) get(name schema.Name, key string, kind Kind) (Value, bool) {
	v, err := s.Get(name, key)
	if err != nil {
		s.logger.Warn("Failed to read setting",
			zap.String("schema", string(name)),
			zap.String("key", key),
			zap.Error(err))
		return Value{}, false
	}
	if v.Kind() != kind {
		s.logger.Warn("Setting read with wrong kind",
			zap.String("schema", string(name)),
			zap.String("key", key),
			zap.Stringer("declared", v.Kind()),
			zap.Stringer("requested", kind),
			zap.Error(ErrKindMismatch))
		return Value{}, false
	}
	return v, true
}

// GetString returns the value of a string key, or "" on failure.
func (s *Store) GetString(name schema.Name, key string) string {
	v, _ := s.get(name, key, KindString)
	return v.Str()
}

// GetBoolean returns the value of a boolean key, or false on failure.
func (s *Store) GetBoolean(name schema.Name, key string) bool {
	v, _ := s.get(name, key, KindBoolean)
	return v.Bool()
}

// GetDouble returns the value of a double key, or 0 on failure.
func (s *Store) GetDouble(name schema.Name, key string) float64 {
	v, _ := s.get(name, key, KindDouble)
	return v.Double()
}

// GetStringList returns the value of a string list key, or nil on failure.
func (s *Store) GetStringList(name schema.Name, key string) []string {
	v, ok := s.get(name, key, KindStringList)
	if !ok {
		return nil
	}
	return v.List()
}

// Set validates v, mirrors it to the host when sandboxed and then writes it
// in process. Only the in-process error is returned.
func (s *Store) Set(ctx context.Context, name schema.Name, key string, v Value) error {
	h, err := s.handle(name)
	if err != nil {
		return err
	}
	if err := (declaredSchema{schema: h.Schema()}).validate(key, v); err != nil {
		return err
	}

	path, err := s.path(name, key)
	if err != nil {
		return err
	}
	s.backend.MirrorWrite(ctx, path, v)

	if err := h.Set(key, v); err != nil {
		return fmt.Errorf("writing %s.%s: %w", name, key, err)
	}
	s.logger.Debug("Setting written",
		zap.String("schema", string(name)),
		zap.String("key", key),
		zap.String("value", v.GVariant()))
	return nil
}

// SetString writes a string key.
func (s *Store) SetString(ctx context.Context, name schema.Name, key, v string) error {
	return s.Set(ctx, name, key, String(v))
}

// SetBoolean writes a boolean key.
func (s *Store) SetBoolean(ctx context.Context, name schema.Name, key string, v bool) error {
	return s.Set(ctx, name, key, Bool(v))
}

// SetDouble writes a double key.
func (s *Store) SetDouble(ctx context.Context, name schema.Name, key string, v float64) error {
	return s.Set(ctx, name, key, Double(v))
}

// SetStringList writes a string list key.
func (s *Store) SetStringList(ctx context.Context, name schema.Name, key string, v []string) error {
	return s.Set(ctx, name, key, StringList(v))
}

// Reset restores a key to its default, mirroring "dconf reset" first when
// sandboxed.
func (s *Store) Reset(ctx context.Context, name schema.Name, key string) error {
	h, err := s.handle(name)
	if err != nil {
		return err
	}
	if _, ok := h.Schema().Key(key); !ok {
		return fmt.Errorf("%w %q in schema %s", ErrUnknownKey, key, name)
	}

	path, err := s.path(name, key)
	if err != nil {
		return err
	}
	s.backend.MirrorReset(ctx, path)

	if err := h.Reset(key); err != nil {
		return fmt.Errorf("resetting %s.%s: %w", name, key, err)
	}
	return nil
}

func (s *Store) path(name schema.Name, key string) (string, error) {
	prefix, err := schema.Prefix(s.root, name)
	if err != nil {
		return "", err
	}
	return prefix + key, nil
}

// Default returns the declared default of a key.
func (s *Store) Default(name schema.Name, key string) (Value, bool) {
	h, err := s.handle(name)
	if err != nil {
		return Value{}, false
	}
	return h.Default(key)
}

func (s *Store) defaultOf(name schema.Name, key string, kind Kind) (Value, bool) {
	v, ok := s.Default(name, key)
	if !ok || v.Kind() != kind {
		return Value{}, false
	}
	return v, true
}

// GetDefaultString returns the default of a string key; false when it has none.
func (s *Store) GetDefaultString(name schema.Name, key string) (string, bool) {
	v, ok := s.defaultOf(name, key, KindString)
	return v.Str(), ok
}

// GetDefaultBoolean returns the default of a boolean key.
func (s *Store) GetDefaultBoolean(name schema.Name, key string) (bool, bool) {
	v, ok := s.defaultOf(name, key, KindBoolean)
	return v.Bool(), ok
}

// GetDefaultDouble returns the default of a double key.
func (s *Store) GetDefaultDouble(name schema.Name, key string) (float64, bool) {
	v, ok := s.defaultOf(name, key, KindDouble)
	return v.Double(), ok
}

// IsValueDefault reports whether the current value equals the default. It
// is false when either cannot be read.
func (s *Store) IsValueDefault(name schema.Name, key string) bool {
	def, ok := s.Default(name, key)
	if !ok {
		return false
	}
	cur, err := s.Get(name, key)
	if err != nil {
		return false
	}
	return cur.Equal(def)
}

// GetAvailableValues returns the choices of an enumeration key. The second
// result is false for every other key.
func (s *Store) GetAvailableValues(name schema.Name, key string) ([]string, bool) {
	h, err := s.handle(name)
	if err != nil {
		return nil, false
	}
	r, err := h.Range(key)
	if err != nil || r.Type != "enum" {
		return nil, false
	}
	return r.Values, true
}

// AddToList appends item to a string list key unless it is already there.
// Duplicates already stored are dropped, keeping the first occurrence, and
// the list is written back either way.
func (s *Store) AddToList(ctx context.Context, name schema.Name, key, item string) error {
	list, err := s.list(name, key)
	if err != nil {
		return err
	}
	return s.SetStringList(ctx, name, key, uniqueAppend(list, item))
}

func uniqueAppend(list []string, item string) []string {
	seen := make(map[string]bool, len(list)+1)
	out := make([]string, 0, len(list)+1)
	for _, v := range append(list, item) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// RemoveFromList removes every occurrence of item from a string list key
// and writes the list back.
func (s *Store) RemoveFromList(ctx context.Context, name schema.Name, key, item string) error {
	list, err := s.list(name, key)
	if err != nil {
		return err
	}
	list = slices.DeleteFunc(list, func(v string) bool { return v == item })
	return s.SetStringList(ctx, name, key, list)
}

func (s *Store) list(name schema.Name, key string) ([]string, error) {
	v, err := s.Get(name, key)
	if err != nil {
		return nil, err
	}
	if v.Kind() != KindStringList {
		return nil, fmt.Errorf("%w: %s.%s is a %s, not a string list", ErrKindMismatch, name, key, v.Kind())
	}
	return v.List(), nil
}
