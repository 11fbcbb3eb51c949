package supervisor

import (
	"fmt"
	"net"
)

// AllocatePort scans [start, end) in ascending order and returns the
// first port that can be bound on loopback. The listener is released
// immediately, so another process may claim the port before the backend
// binds it; that race is accepted, the backend will then fail readiness.
func AllocatePort(start, end int) (int, error) {
	for port := start; port < end; port++ {
		l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			continue
		}
		_ = l.Close()
		return port, nil
	}
	return 0, fmt.Errorf("%w [%d, %d)", ErrNoPortAvailable, start, end)
}
