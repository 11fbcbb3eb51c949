//go:build unix

package launcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

// writeScript drops an executable shell script into a temp dir. The
// launchers run it as `<script-or-interp> -m <entrypoint> --port <n>`,
// so inside the script $4 is the port.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backend.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil { // #nosec G306
		t.Fatal(err)
	}
	return path
}

func TestDevelopmentLaunchAndTerminate(t *testing.T) {
	d := &Development{Interpreter: "/bin/sh", Entrypoint: writeScript(t, "sleep 30\n")}

	h, events, err := d.Launch(context.Background(), 8123)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	// Development runs are not captured.
	if events != nil {
		t.Fatal("expected nil event stream")
	}
	if h.Strategy() != StrategyDevelopment {
		t.Fatalf("strategy = %q", h.Strategy())
	}
	pid := h.PID()
	if pid <= 0 {
		t.Fatalf("pid = %d", pid)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Terminate(ctx); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if err := syscall.Kill(pid, 0); !errors.Is(err, syscall.ESRCH) {
		t.Fatalf("process %d still exists after Terminate: %v", pid, err)
	}
}

func TestDevelopmentTerminateAfterExit(t *testing.T) {
	d := &Development{Interpreter: "/bin/sh", Entrypoint: writeScript(t, "exit 0\n")}

	h, _, err := d.Launch(context.Background(), 8123)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if syscall.Kill(h.PID(), 0) != nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Terminate(ctx); err != nil {
		t.Fatalf("Terminate on exited process: %v", err)
	}
}

func TestDevelopmentSpawnFailure(t *testing.T) {
	d := &Development{Interpreter: filepath.Join(t.TempDir(), "missing-python")}

	_, _, err := d.Launch(context.Background(), 8123)
	var se *SpawnError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpawnError, got %v", err)
	}
}
