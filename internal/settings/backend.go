package settings

import (
	"context"

	"go.uber.org/zap"

	"github.com/Guliveer/tweakslite/internal/platform"
	"github.com/Guliveer/tweakslite/internal/runner"
)

// Backend decides what happens besides the in-process write. It is chosen
// once from the execution context and injected into the Store.
type Backend interface {
	Context() platform.Context
	// MirrorWrite and MirrorReset are best effort: failures are logged by
	// the backend and never reported.
	MirrorWrite(ctx context.Context, path string, v Value)
	MirrorReset(ctx context.Context, path string)
}

// Executor runs host commands. *runner.Runner implements it.
type Executor interface {
	Output(ctx context.Context, cmd runner.Command) (string, bool)
}

// NewBackend returns the backend for the execution context c.
func NewBackend(c platform.Context, exec Executor, logger *zap.Logger) Backend {
	if c == platform.Sandboxed {
		return NewSandboxedBackend(exec, logger)
	}
	return NativeBackend{}
}

// NativeBackend writes only in process.
type NativeBackend struct{}

func (NativeBackend) Context() platform.Context { return platform.Native }
func (NativeBackend) MirrorWrite(context.Context, string, Value) {}
func (NativeBackend) MirrorReset(context.Context, string) {}

// SandboxedBackend mirrors every mutation to the host store with dconf.
type SandboxedBackend struct {
	exec   Executor
	logger *zap.Logger
}

// NewSandboxedBackend creates a backend issuing host dconf commands.
func NewSandboxedBackend(exec Executor, logger *zap.Logger) *SandboxedBackend {
	return &SandboxedBackend{exec: exec, logger: logger.Named("mirror")}
}

func (b *SandboxedBackend) Context() platform.Context { return platform.Sandboxed }

// MirrorWrite runs "dconf write <path> <value>" on the host.
func (b *SandboxedBackend) MirrorWrite(ctx context.Context, path string, v Value) {
	b.dispatch(ctx, runner.Argv("dconf", "write", path, v.GVariant()).OnHost(), path)
}

// MirrorReset runs "dconf reset <path>" on the host.
func (b *SandboxedBackend) MirrorReset(ctx context.Context, path string) {
	b.dispatch(ctx, runner.Argv("dconf", "reset", path).OnHost(), path)
}

func (b *SandboxedBackend) dispatch(ctx context.Context, cmd runner.Command, path string) {
	if _, ok := b.exec.Output(ctx, cmd); !ok {
		b.logger.Warn("Host mirror failed, keeping in-process value", zap.String("path", path))
		return
	}
	b.logger.Debug("Mirrored to host", zap.String("path", path))
}
