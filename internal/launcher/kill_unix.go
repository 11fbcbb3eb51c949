//go:build unix

package launcher

import "syscall"

// killGroup sends SIGKILL to the child's process group so helpers the
// backend forked die with it.
func killGroup(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
