package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Guliveer/tweakslite/internal/keyfile"
	"github.com/Guliveer/tweakslite/internal/schema"
)

// KeyfileSource stores values in the GSettings keyfile backend format:
// one "[org/gnome/desktop/interface]" group per schema path holding
// GVariant-encoded values. The file is read again on every access so edits
// made by other programs show up on the next read.
//
// An empty path keeps the document in memory only.
type KeyfileSource struct {
	path   string
	root   string
	logger *zap.Logger

	mu  sync.Mutex
	mem *keyfile.Document
}

// NewKeyfileSource creates a source backed by the file at path. Schema
// groups are named after their prefix under root.
func NewKeyfileSource(path, root string, logger *zap.Logger) *KeyfileSource {
	return &KeyfileSource{
		path:   path,
		root:   root,
		logger: logger.Named("keyfile"),
		mem:    &keyfile.Document{},
	}
}

// DefaultKeyfilePath returns $XDG_CONFIG_HOME/glib-2.0/settings/keyfile.
func DefaultKeyfilePath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "glib-2.0", "settings", "keyfile"), nil
}

// Path returns the backing file, or "" for an in-memory source.
func (k *KeyfileSource) Path() string { return k.path }

// Open returns a handle for s.
func (k *KeyfileSource) Open(s *schema.Schema) (Handle, error) {
	prefix, err := schema.Prefix(k.root, s.Name)
	if err != nil {
		return nil, err
	}
	if k.path != "" {
		if err := os.MkdirAll(filepath.Dir(k.path), 0755); err != nil {
			return nil, fmt.Errorf("creating keyfile directory: %w", err)
		}
	}
	return &keyfileHandle{
		declaredSchema: declaredSchema{schema: s},
		src:            k,
		group:          strings.Trim(prefix, "/"),
	}, nil
}

// load must be called with k.mu held.
func (k *KeyfileSource) load() (*keyfile.Document, error) {
	if k.path == "" {
		return k.mem, nil
	}
	data, err := os.ReadFile(k.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &keyfile.Document{}, nil
		}
		return nil, fmt.Errorf("reading keyfile: %w", err)
	}
	return keyfile.Parse(string(data)), nil
}

// save writes through a temporary file so readers never see a partial
// document. Must be called with k.mu held.
func (k *KeyfileSource) save(doc *keyfile.Document) error {
	if k.path == "" {
		k.mem = doc
		return nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(k.path), ".keyfile-*")
	if err != nil {
		return fmt.Errorf("creating temporary keyfile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(doc.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing keyfile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing keyfile: %w", err)
	}
	if err := os.Rename(tmp.Name(), k.path); err != nil {
		return fmt.Errorf("replacing keyfile: %w", err)
	}
	return nil
}

type keyfileHandle struct {
	declaredSchema
	src   *KeyfileSource
	group string
}

func (h *keyfileHandle) Get(key string) (Value, error) {
	decl, kind, err := h.declared(key)
	if err != nil {
		return Value{}, err
	}

	h.src.mu.Lock()
	doc, err := h.src.load()
	h.src.mu.Unlock()
	if err != nil {
		return Value{}, err
	}

	text, ok := doc.Lookup(h.group, key)
	if !ok {
		return fromDefault(decl)
	}
	v, err := ParseGVariant(kind, text)
	if err != nil {
		// GSettings ignores stored values of the wrong type as well.
		h.src.logger.Warn("Ignoring malformed stored value",
			zap.String("group", h.group),
			zap.String("key", key),
			zap.String("value", text),
			zap.Error(err))
		return fromDefault(decl)
	}
	return v, nil
}

func (h *keyfileHandle) Set(key string, v Value) error {
	if err := h.validate(key, v); err != nil {
		return err
	}

	h.src.mu.Lock()
	defer h.src.mu.Unlock()
	doc, err := h.src.load()
	if err != nil {
		return err
	}
	doc.Set(h.group, key, v.GVariant())
	return h.src.save(doc)
}

func (h *keyfileHandle) Reset(key string) error {
	if _, _, err := h.declared(key); err != nil {
		return err
	}

	h.src.mu.Lock()
	defer h.src.mu.Unlock()
	doc, err := h.src.load()
	if err != nil {
		return err
	}
	if !doc.Delete(h.group, key) {
		return nil
	}
	return h.src.save(doc)
}
