// Package runner executes external commands under a hard wall-clock timeout.
//
// Run reports failures as one of two kinds: a *ProcessError when the command
// could not be started or exited non-zero, and ErrTimeout when the deadline
// expired and the process group was terminated. Output collapses both kinds
// into an absent result; the distinction is then only visible in the log.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every command that does not set its own timeout.
const DefaultTimeout = 30 * time.Second

// waitDelay is how long a terminated command may keep its pipes open.
const waitDelay = 2 * time.Second

// ErrTimeout is returned by Run when a command did not finish in time.
var ErrTimeout = errors.New("command timed out")

// ProcessError describes a command that failed to start or exited non-zero.
type ProcessError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Runner executes Commands. Host commands are prefixed with the configured
// host-command channel (for example "flatpak-spawn --host").
type Runner struct {
	logger  *zap.Logger
	timeout time.Duration
	host    []string
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout sets the timeout used by commands without their own.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithHostCommand sets the argument prefix for commands flagged Host.
// An empty prefix runs host commands directly.
func WithHostCommand(prefix []string) Option {
	return func(r *Runner) {
		r.host = append([]string(nil), prefix...)
	}
}

// New creates a Runner with a 30 second default timeout and no host prefix.
func New(logger *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger:  logger.Named("runner"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timeout returns the default timeout of the runner.
func (r *Runner) Timeout() time.Duration { return r.timeout }

func (r *Runner) argv(cmd Command) ([]string, error) {
	args := cmd.argv()
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	if cmd.Host && len(r.host) > 0 {
		args = append(append([]string(nil), r.host...), args...)
	}
	return args, nil
}

// Run executes cmd and returns its standard output with trailing whitespace
// trimmed. It never retries.
func (r *Runner) Run(ctx context.Context, cmd Command) (string, error) {
	args, err := r.argv(cmd)
	if err != nil {
		return "", &ProcessError{Command: cmd.String(), ExitCode: -1, Err: err}
	}

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(ctx, args[0], args[1:]...)
	prepare(c)
	c.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	r.logger.Debug("Running command",
		zap.String("command", Join(args)),
		zap.Duration("timeout", timeout))

	if err := c.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s: %w after %s", cmd.String(), ErrTimeout, timeout)
		}
		pe := &ProcessError{
			Command:  cmd.String(),
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			pe.ExitCode = exitErr.ExitCode()
		}
		return "", pe
	}

	return strings.TrimRightFunc(stdout.String(), unicode.IsSpace), nil
}

// Output runs cmd and reports only whether it produced a result. Timeouts
// and process failures are logged with their details and otherwise look
// the same to the caller.
func (r *Runner) Output(ctx context.Context, cmd Command) (string, bool) {
	out, err := r.Run(ctx, cmd)
	if err == nil {
		return out, true
	}

	var pe *ProcessError
	switch {
	case errors.Is(err, ErrTimeout):
		r.logger.Error("Command timed out",
			zap.String("command", cmd.String()),
			zap.Error(err))
	case errors.As(err, &pe):
		r.logger.Error("Command failed",
			zap.String("command", pe.Command),
			zap.Int("exit_code", pe.ExitCode),
			zap.String("stderr", pe.Stderr),
			zap.Error(pe.Err))
	default:
		r.logger.Error("Command failed", zap.String("command", cmd.String()), zap.Error(err))
	}
	return "", false
}
