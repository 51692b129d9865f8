package runner

import (
	"strconv"
	"strings"
	"time"

	"mvdan.cc/sh/v3/syntax"
)

// Command is either an argument vector or a shell script run with "sh -c".
// Values that end up inside Shell must be quoted with Quote.
type Command struct {
	Args    []string
	Shell   string
	Stdin   string
	Timeout time.Duration
	// Host marks commands that must reach the host outside the sandbox.
	Host bool
}

// Argv builds a Command from a literal argument vector.
func Argv(args ...string) Command {
	return Command{Args: args}
}

// Script builds a Command that runs script with "sh -c".
func Script(script string) Command {
	return Command{Shell: script}
}

// OnHost returns a copy of c routed through the host-command channel.
func (c Command) OnHost() Command {
	c.Host = true
	return c
}

// WithStdin returns a copy of c that is fed data on standard input.
func (c Command) WithStdin(data string) Command {
	c.Stdin = data
	return c
}

func (c Command) argv() []string {
	if c.Shell != "" {
		return []string{"sh", "-c", c.Shell}
	}
	return c.Args
}

// String renders the command as a shell-quoted line for logs.
func (c Command) String() string {
	return Join(c.argv())
}

// Join quotes each argument and joins them with spaces.
func Join(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Quote(a)
	}
	return strings.Join(quoted, " ")
}

// Quote returns s quoted so that a POSIX shell reads it as one literal word.
func Quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		// Only strings a shell cannot represent (NUL bytes) end up here.
		return strconv.Quote(s)
	}
	return q
}
