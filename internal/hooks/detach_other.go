//go:build !unix

package hooks

import "os/exec"

// setDetached is a no-op on non-POSIX platforms, which have no process
// group concept to opt out of.
func setDetached(cmd *exec.Cmd) {}
