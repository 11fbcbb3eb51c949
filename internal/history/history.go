package history

import (
	"context"
	"time"
)

// EventType defines the kind of backend lifecycle event.
type EventType string

const (
	EventStarted EventType = "started" // process spawned
	EventReady   EventType = "ready"   // readiness probe succeeded
	EventStopped EventType = "stopped" // shutdown protocol completed
	EventFailed  EventType = "failed"  // start aborted (port/spawn/readiness)
)

// Event records one backend lifecycle transition for auditing.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Port       int       `json:"port"`
	PID        int       `json:"pid"`
	Strategy   string    `json:"strategy"`
	Detail     string    `json:"detail"` // error text for failed events
}

// Sink is a destination for lifecycle events.
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}
