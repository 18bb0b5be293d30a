//go:build unix

package hooks

import (
	"os/exec"
	"syscall"
)

// setDetached puts cmd in its own process group so it survives the
// parent CLI process exiting and isn't signaled by the shared
// process-group SIGINT the foreground pipeline uses (spec §5
// Cancellation semantics: "background children are detached into
// their own process group and are not signaled").
func setDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
