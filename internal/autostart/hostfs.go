package autostart

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/Guliveer/tweakslite/internal/runner"
)

// Executor runs commands and reports their failures. *runner.Runner
// implements it.
type Executor interface {
	Run(ctx context.Context, cmd runner.Command) (string, error)
}

// HostFS reaches the host filesystem from inside a sandbox. Every
// operation is a host command; paths are passed as arguments or quoted.
type HostFS struct {
	exec Executor
}

// NewHostFS creates a HostFS running commands through exec.
func NewHostFS(exec Executor) *HostFS {
	return &HostFS{exec: exec}
}

// MkdirAll runs "mkdir -p" on the host.
func (h *HostFS) MkdirAll(ctx context.Context, dir string) error {
	_, err := h.exec.Run(ctx, runner.Argv("mkdir", "-p", dir).OnHost())
	return err
}

// List runs find on the host and returns the regular *.desktop files in dir.
func (h *HostFS) List(ctx context.Context, dir string) ([]string, error) {
	out, err := h.exec.Run(ctx, runner.Argv("find", dir, "-maxdepth", "1", "-type", "f", "-name", "*.desktop").OnHost())
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || path.Clean(line) == path.Clean(dir) {
			continue
		}
		files = append(files, line)
	}
	sort.Strings(files)
	return files, nil
}

// ReadFile runs cat on the host. Trailing whitespace is trimmed.
func (h *HostFS) ReadFile(ctx context.Context, name string) (string, error) {
	return h.exec.Run(ctx, runner.Argv("cat", name).OnHost())
}

// WriteFile feeds content to "cat > name" on the host.
func (h *HostFS) WriteFile(ctx context.Context, name, content string) error {
	cmd := runner.Script("cat > " + runner.Quote(name)).WithStdin(content).OnHost()
	_, err := h.exec.Run(ctx, cmd)
	return err
}

// Remove deletes name on the host. It returns false when name does not
// exist, which "test -e" reports with exit status 1.
func (h *HostFS) Remove(ctx context.Context, name string) (bool, error) {
	_, err := h.exec.Run(ctx, runner.Argv("test", "-e", name).OnHost())
	if err != nil {
		var pe *runner.ProcessError
		if errors.As(err, &pe) && pe.ExitCode == 1 {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", name, err)
	}
	if _, err := h.exec.Run(ctx, runner.Argv("rm", "-f", "--", name).OnHost()); err != nil {
		return false, err
	}
	return true, nil
}

// Runnable asks the host shell whether program resolves to a command.
func (h *HostFS) Runnable(ctx context.Context, program string) bool {
	if program == "" {
		return false
	}
	_, err := h.exec.Run(ctx, runner.Argv("sh", "-c", `command -v "$1"`, "sh", program).OnHost())
	return err == nil
}
