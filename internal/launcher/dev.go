package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
)

// Development launches the backend through a system-resolved Python
// interpreter, the way a checkout is run during development. Output is
// not captured; the backend inherits /dev/null. This asymmetry with the
// sidecar strategy is intentional: dev runs are expected to be watched
// through the backend's own logging, not the supervisor's.
type Development struct {
	Interpreter string // defaults to python3
	Entrypoint  string // module run with -m, defaults to ragkit.desktop.main
	Logger      *slog.Logger
}

func (d *Development) interpreter() string {
	if d.Interpreter != "" {
		return d.Interpreter
	}
	return "python3"
}

func (d *Development) entrypoint() string {
	if d.Entrypoint != "" {
		return d.Entrypoint
	}
	return "ragkit.desktop.main"
}

// Launch spawns the interpreter with `-m <entrypoint> --port <port>`.
// The child is placed in its own process group and, where the platform
// supports it, is killed by the kernel if the supervisor process dies.
func (d *Development) Launch(_ context.Context, port int) (Handle, <-chan Event, error) {
	// #nosec G204 -- interpreter and entrypoint come from trusted config
	cmd := exec.Command(d.interpreter(), "-m", d.entrypoint(), "--port", strconv.Itoa(port))
	configureSysProcAttr(cmd)

	null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, &SpawnError{Err: fmt.Errorf("open %s: %w", os.DevNull, err)}
	}
	cmd.Stdout = null
	cmd.Stderr = null

	if err := cmd.Start(); err != nil {
		_ = null.Close()
		return nil, nil, &SpawnError{Err: err}
	}
	_ = null.Close()

	h := &devHandle{cmd: cmd, waitDone: make(chan struct{})}
	go func() {
		h.waitErr = cmd.Wait()
		close(h.waitDone)
	}()

	if d.Logger != nil {
		d.Logger.Info("backend started in development mode",
			"interpreter", d.interpreter(), "entrypoint", d.entrypoint(), "port", port, "pid", cmd.Process.Pid)
	}
	return h, nil, nil
}

// devHandle owns a directly spawned child. A single goroutine attached
// at launch reaps the process; Terminate waits on it after the kill.
type devHandle struct {
	cmd      *exec.Cmd
	waitDone chan struct{}
	waitErr  error
}

func (h *devHandle) Strategy() Strategy { return StrategyDevelopment }

func (h *devHandle) PID() int { return h.cmd.Process.Pid }

func (h *devHandle) Terminate(ctx context.Context) error {
	select {
	case <-h.waitDone:
		// already exited and reaped
		return nil
	default:
	}
	killGroup(h.cmd.Process.Pid)
	select {
	case <-h.waitDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
