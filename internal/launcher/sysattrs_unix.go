//go:build unix && !linux

package launcher

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr places the child in a new process group for group
// signaling. Parent-death kill is a Linux-only facility; on other Unix
// systems an unexpected supervisor death can leak the child, which the
// forced-terminate path in Stop otherwise prevents.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
