package settings

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Guliveer/tweakslite/internal/runner"
	"github.com/Guliveer/tweakslite/internal/schema"
)

// CommandRunner runs a command and reports failures. *runner.Runner
// implements it.
type CommandRunner interface {
	Run(ctx context.Context, cmd runner.Command) (string, error)
}

// DconfSource stores values in the user's dconf database with the dconf
// command line tool. It is the store a native desktop session reads.
type DconfSource struct {
	run    CommandRunner
	root   string
	logger *zap.Logger
}

// NewDconfSource creates a source that reads and writes keys under root.
func NewDconfSource(run CommandRunner, root string, logger *zap.Logger) *DconfSource {
	return &DconfSource{
		run:    run,
		root:   root,
		logger: logger.Named("dconf"),
	}
}

// Open returns a handle for s.
func (d *DconfSource) Open(s *schema.Schema) (Handle, error) {
	prefix, err := schema.Prefix(d.root, s.Name)
	if err != nil {
		return nil, err
	}
	return &dconfHandle{
		declaredSchema: declaredSchema{schema: s},
		src:            d,
		prefix:         prefix,
	}, nil
}

type dconfHandle struct {
	declaredSchema
	src    *DconfSource
	prefix string
}

// Handle operations are bounded by the runner timeout.
func (h *dconfHandle) exec(cmd runner.Command) (string, error) {
	return h.src.run.Run(context.Background(), cmd)
}

func (h *dconfHandle) Get(key string) (Value, error) {
	decl, kind, err := h.declared(key)
	if err != nil {
		return Value{}, err
	}

	path := h.prefix + key
	text, err := h.exec(runner.Argv("dconf", "read", path))
	if err != nil {
		return Value{}, fmt.Errorf("reading %s: %w", path, err)
	}
	// dconf prints nothing for keys without a user value.
	if text == "" {
		return fromDefault(decl)
	}
	v, err := ParseGVariant(kind, text)
	if err != nil {
		h.src.logger.Warn("Ignoring malformed stored value",
			zap.String("path", path),
			zap.String("value", text),
			zap.Error(err))
		return fromDefault(decl)
	}
	return v, nil
}

func (h *dconfHandle) Set(key string, v Value) error {
	if err := h.validate(key, v); err != nil {
		return err
	}
	path := h.prefix + key
	if _, err := h.exec(runner.Argv("dconf", "write", path, v.GVariant())); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (h *dconfHandle) Reset(key string) error {
	if _, _, err := h.declared(key); err != nil {
		return err
	}
	path := h.prefix + key
	if _, err := h.exec(runner.Argv("dconf", "reset", path)); err != nil {
		return fmt.Errorf("resetting %s: %w", path, err)
	}
	return nil
}
