//go:build !windows

package runner

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// prepare starts the command in its own process group so that a timeout
// terminates shell children along with the shell itself.
func prepare(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		if err := unix.Kill(-c.Process.Pid, unix.SIGTERM); err != nil {
			return c.Process.Kill()
		}
		return nil
	}
}
