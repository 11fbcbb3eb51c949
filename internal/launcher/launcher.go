package launcher

import (
	"context"
	"errors"
	"fmt"
)

// Strategy tags how a backend process was produced. The two strategies
// expose different termination primitives, so the supervisor's stop path
// dispatches on the handle, never on the strategy directly.
type Strategy string

const (
	StrategyDevelopment Strategy = "development"
	StrategySidecar     Strategy = "sidecar"
)

// EventType tags an output event emitted by a sidecar-launched backend.
type EventType string

const (
	EventStdoutLine   EventType = "stdout"
	EventStderrLine   EventType = "stderr"
	EventExited       EventType = "exited"
	EventLaunchFailed EventType = "launch_failed"
)

// Event is a single observation from a running sidecar: an output line,
// or a terminal event. After EventExited or EventLaunchFailed the stream
// is closed; consumers must stop reading then.
type Event struct {
	Type     EventType
	Line     string
	ExitCode int
	Err      error
}

// ErrResourceNotFound reports that the bundled backend runtime is
// missing from the resource directory.
var ErrResourceNotFound = errors.New("bundled backend runtime not found")

// SpawnError wraps an OS-level failure to start the backend process.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string { return fmt.Sprintf("spawn backend process: %v", e.Err) }
func (e *SpawnError) Unwrap() error { return e.Err }

// Handle is the supervisor's grip on a running backend. Terminate is the
// forced half of the shutdown protocol; graceful signaling happens over
// HTTP before the supervisor calls it.
type Handle interface {
	Strategy() Strategy
	PID() int
	// Terminate force-kills the process. For development handles the
	// kill is awaited until the child is reaped or ctx expires; for
	// sidecar handles it is a best-effort signal to the monitor
	// goroutine that owns the process.
	Terminate(ctx context.Context) error
}

// Launcher starts the backend listening on the given port. The event
// stream is nil for strategies that do not capture output.
type Launcher interface {
	Launch(ctx context.Context, port int) (Handle, <-chan Event, error)
}
