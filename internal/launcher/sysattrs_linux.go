//go:build linux

package launcher

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr places the child in a new process group so the
// whole tree can be signaled, and asks the kernel to deliver SIGKILL if
// the supervisor process itself dies. The latter is the contract that a
// spawned backend must never outlive its owning handle.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
}
