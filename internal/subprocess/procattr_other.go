//go:build !linux

package subprocess

import "os/exec"

// configureProcAttr is a no-op where the kernel offers no parent-death
// signal. Worker teardown then relies on context cancellation and Close;
// a supervisor that dies without either can leave the worker running.
func configureProcAttr(_ *exec.Cmd) {}
