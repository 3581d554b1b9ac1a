//go:build linux

package subprocess

import (
	"os/exec"
	"syscall"
)

// configureProcAttr ties the worker's lifetime to the supervising process.
// The kernel delivers SIGKILL to the worker when this process dies, so a
// crash or os.Exit that skips Shutdown leaves no orphaned worker behind.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGKILL}
}
