package supervisor

import (
	"errors"
	"fmt"
	"net"
	"testing"
)

// reserveRange finds n consecutive free loopback ports and returns the
// first one along with the open listeners holding them, so tests control
// exactly which ports are busy.
func reserveRange(t *testing.T, n int) (int, []net.Listener) {
	t.Helper()
	for base := 21000; base < 60000; base += n + 1 {
		lns := make([]net.Listener, 0, n)
		ok := true
		for p := base; p < base+n; p++ {
			ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", p))
			if err != nil {
				ok = false
				break
			}
			lns = append(lns, ln)
		}
		if ok {
			return base, lns
		}
		for _, ln := range lns {
			_ = ln.Close()
		}
	}
	t.Fatal("no consecutive free ports found")
	return 0, nil
}

func TestAllocatePortFirstFree(t *testing.T) {
	base, lns := reserveRange(t, 3)
	for _, ln := range lns {
		_ = ln.Close()
	}

	port, err := AllocatePort(base, base+3)
	if err != nil {
		t.Fatalf("AllocatePort: %v", err)
	}
	if port != base {
		t.Fatalf("expected first free port %d, got %d", base, port)
	}

	// The scan must release the port it probed.
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		t.Fatalf("allocated port still held: %v", err)
	}
	_ = ln.Close()
}

func TestAllocatePortSkipsBusy(t *testing.T) {
	base, lns := reserveRange(t, 3)
	// Keep the first port busy, free the rest.
	for _, ln := range lns[1:] {
		_ = ln.Close()
	}
	defer func() { _ = lns[0].Close() }()

	port, err := AllocatePort(base, base+3)
	if err != nil {
		t.Fatalf("AllocatePort: %v", err)
	}
	if port != base+1 {
		t.Fatalf("expected %d, got %d", base+1, port)
	}
}

func TestAllocatePortExhausted(t *testing.T) {
	base, lns := reserveRange(t, 2)
	defer func() {
		for _, ln := range lns {
			_ = ln.Close()
		}
	}()

	_, err := AllocatePort(base, base+2)
	if !errors.Is(err, ErrNoPortAvailable) {
		t.Fatalf("expected ErrNoPortAvailable, got %v", err)
	}
}
