package launcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
)

// Sidecar launches the backend through the Python runtime bundled under
// the application resource directory, and captures its output as a
// stream of Events. This is the production strategy: there is no system
// interpreter to rely on, and the backend's output is the only window
// into it, so it is forwarded into the supervisor's log.
type Sidecar struct {
	ResourceDir string
	Entrypoint  string // module run with -m, defaults to ragkit.desktop.main
	Logger      *slog.Logger
}

const eventBuffer = 64

func (s *Sidecar) entrypoint() string {
	if s.Entrypoint != "" {
		return s.Entrypoint
	}
	return "ragkit.desktop.main"
}

// runtimePath resolves the bundled interpreter for the host platform.
func (s *Sidecar) runtimePath() (string, error) {
	var p string
	if runtime.GOOS == "windows" {
		p = filepath.Join(s.ResourceDir, "python", "python.exe")
	} else {
		p = filepath.Join(s.ResourceDir, "python", "bin", "python3")
	}
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("%w: %s", ErrResourceNotFound, p)
	}
	return p, nil
}

// Launch spawns the bundled runtime with piped stdout/stderr. Two
// scanner goroutines pump lines into the event channel and a monitor
// goroutine reaps the process, emits the terminal event and closes the
// channel. The returned handle kills through the monitor's channel.
func (s *Sidecar) Launch(_ context.Context, port int) (Handle, <-chan Event, error) {
	bin, err := s.runtimePath()
	if err != nil {
		return nil, nil, err
	}

	// #nosec G204 -- binary path is resolved from the resource dir
	cmd := exec.Command(bin, "-m", s.entrypoint(), "--port", strconv.Itoa(port))
	configureSysProcAttr(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, &SpawnError{Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, &SpawnError{Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, &SpawnError{Err: err}
	}

	events := make(chan Event, eventBuffer)
	kill := make(chan struct{}, 1)
	done := make(chan struct{})
	pid := cmd.Process.Pid

	// Kill listener: exits when the process is reaped so a handle that
	// never terminates does not leak it.
	go func() {
		select {
		case <-kill:
			killGroup(pid)
		case <-done:
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go pumpLines(stdout, EventStdoutLine, events, &wg)
	go pumpLines(stderr, EventStderrLine, events, &wg)

	go func() {
		wg.Wait()
		err := cmd.Wait()
		close(done)
		switch {
		case err == nil:
			events <- Event{Type: EventExited, ExitCode: 0}
		default:
			var ee *exec.ExitError
			if errors.As(err, &ee) {
				events <- Event{Type: EventExited, ExitCode: ee.ExitCode()}
			} else {
				events <- Event{Type: EventLaunchFailed, Err: err}
			}
		}
		close(events)
	}()

	if s.Logger != nil {
		s.Logger.Info("backend started as sidecar", "runtime", bin, "port", port, "pid", pid)
	}
	return &sidecarHandle{pid: pid, kill: kill}, events, nil
}

func pumpLines(r io.Reader, t EventType, events chan<- Event, wg *sync.WaitGroup) {
	defer wg.Done()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		events <- Event{Type: t, Line: sc.Text()}
	}
}

// sidecarHandle kills through the channel consumed by the monitor
// goroutine that owns the process. The kill is best-effort and not
// awaited; the Exited event on the stream is the confirmation.
type sidecarHandle struct {
	pid  int
	kill chan struct{}
}

func (h *sidecarHandle) Strategy() Strategy { return StrategySidecar }

func (h *sidecarHandle) PID() int { return h.pid }

func (h *sidecarHandle) Terminate(_ context.Context) error {
	select {
	case h.kill <- struct{}{}:
	default:
		// kill already requested
	}
	return nil
}
