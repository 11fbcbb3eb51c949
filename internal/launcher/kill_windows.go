//go:build windows

package launcher

import "os"

// killGroup terminates the child process. Windows has no process-group
// SIGKILL equivalent; descendants are not chased.
func killGroup(pid int) {
	if p, err := os.FindProcess(pid); err == nil {
		_ = p.Kill()
	}
}
