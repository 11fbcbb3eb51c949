package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/henribesnard/ragkit/internal/history"
	"github.com/henribesnard/ragkit/internal/launcher"
	"github.com/henribesnard/ragkit/internal/metrics"
)

// State describes where the supervised backend is in its lifecycle.
// There is no Ready→Crashed transition: after the one-time readiness
// probe the backend is not monitored, and an unexpectedly dead process
// is only discovered when the next proxied request fails to connect.
type State string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StateReady    State = "ready"
	StateStopping State = "stopping"
	StateFailed   State = "failed"
)

var allStates = []State{StateIdle, StateStarting, StateReady, StateStopping, StateFailed}

// Options configures a Supervisor. Zero values fall back to the backend
// contract defaults (ports 8100–8199, 30s/250ms/2s probe, 5s shutdown
// request, 500ms grace).
type Options struct {
	Launcher       launcher.Launcher
	PortRangeStart int
	PortRangeEnd   int // exclusive
	Probe          ProbeConfig
	ShutdownWait   time.Duration // per-request timeout for POST /shutdown
	ShutdownGrace  time.Duration
	Logger         *slog.Logger
	History        history.Sink // optional lifecycle audit sink
}

// Supervisor owns the lifecycle of the single backend process. The
// (port, handle) pair is the only shared mutable state; the mutex guards
// just the short sections that read or replace it, never the spawn,
// probe or HTTP waits, so concurrent proxied calls are not serialized
// behind a slow start or stop.
//
// Start is invoked once at application launch and is not safe to call
// concurrently with itself. Stop is idempotent and may race with
// in-flight proxied calls, which then fail on their own timeouts.
type Supervisor struct {
	mu     sync.Mutex
	port   int
	handle launcher.Handle
	state  State

	opts   Options
	logger *slog.Logger
}

// New creates a Supervisor around the given launcher.
func New(opts Options) *Supervisor {
	if opts.PortRangeStart == 0 {
		opts.PortRangeStart = 8100
	}
	if opts.PortRangeEnd == 0 {
		opts.PortRangeEnd = 8200
	}
	if opts.Probe.Timeout == 0 {
		opts.Probe.Timeout = 30 * time.Second
	}
	if opts.Probe.Interval == 0 {
		opts.Probe.Interval = 250 * time.Millisecond
	}
	if opts.Probe.RequestTimeout == 0 {
		opts.Probe.RequestTimeout = 2 * time.Second
	}
	if opts.ShutdownWait == 0 {
		opts.ShutdownWait = 5 * time.Second
	}
	if opts.ShutdownGrace == 0 {
		opts.ShutdownGrace = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Supervisor{opts: opts, logger: opts.Logger, state: StateIdle}
}

// Port returns the backend's port, 0 while nothing is running.
func (s *Supervisor) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// BaseURL returns the backend's base URL. With no backend running the
// port is 0 and any request against the URL fails with a connection
// error, which is the designed behavior for calls issued too early.
func (s *Supervisor) BaseURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", s.Port())
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start allocates a port, launches the backend and waits until it
// answers the health probe. On readiness timeout the failed process
// handle is deliberately left in place: startup failure is fatal to the
// application, and the shutdown path that follows will reap it.
func (s *Supervisor) Start(ctx context.Context) error {
	s.setState(StateStarting)

	port, err := AllocatePort(s.opts.PortRangeStart, s.opts.PortRangeEnd)
	if err != nil {
		return s.failStart("port", 0, err)
	}
	s.mu.Lock()
	s.port = port
	s.mu.Unlock()

	s.logger.Info("starting backend", "port", port)

	h, events, err := s.opts.Launcher.Launch(ctx, port)
	if err != nil {
		return s.failStart("spawn", port, err)
	}
	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()

	if events != nil {
		go s.forwardOutput(events)
	}
	s.record(history.EventStarted, port, h.PID(), string(h.Strategy()), "")

	began := time.Now()
	if err := WaitUntilReady(ctx, port, s.opts.Probe); err != nil {
		return s.failStart("readiness", port, err)
	}

	metrics.ObserveReadiness(time.Since(began).Seconds())
	metrics.IncStart()
	s.setState(StateReady)
	s.record(history.EventReady, port, h.PID(), string(h.Strategy()), "")
	s.logger.Info("backend ready", "port", port, "pid", h.PID())
	return nil
}

// Stop runs the graceful-then-forced shutdown protocol: best-effort
// POST /shutdown, a fixed grace period for a cooperating backend, then
// an unconditional strategy-tagged terminate, and finally the endpoint
// reset. Every internal failure is swallowed; there is nothing useful
// to do with one while the application is closing. Stop is idempotent.
func (s *Supervisor) Stop(ctx context.Context) {
	s.mu.Lock()
	port := s.port
	running := s.handle != nil
	s.mu.Unlock()

	if port == 0 && !running {
		return
	}
	s.setState(StateStopping)
	s.logger.Info("stopping backend", "port", port)

	if port != 0 {
		s.postShutdown(ctx, port)
	}
	if running {
		select {
		case <-time.After(s.opts.ShutdownGrace):
		case <-ctx.Done():
		}
	}

	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.port = 0
	s.mu.Unlock()

	if h != nil {
		tctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := h.Terminate(tctx); err != nil {
			s.logger.Warn("backend terminate", "error", err)
		}
		cancel()
		metrics.IncStop()
		s.record(history.EventStopped, port, h.PID(), string(h.Strategy()), "")
	}
	s.setState(StateIdle)
	s.logger.Info("backend stopped")
}

// postShutdown asks the backend to exit on its own. The backend may be
// gone already or not implement the route; any outcome is acceptable.
func (s *Supervisor) postShutdown(ctx context.Context, port int) {
	url := fmt.Sprintf("http://127.0.0.1:%d/shutdown", port)
	client := &http.Client{Timeout: s.opts.ShutdownWait}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}

// forwardOutput drains a sidecar's event stream into the supervisor log
// until the terminal event. It is purely observational: an Exited or
// LaunchFailed event ends this loop, not the supervisor.
func (s *Supervisor) forwardOutput(events <-chan launcher.Event) {
	log := s.logger.With("source", "backend")
	for ev := range events {
		switch ev.Type {
		case launcher.EventStdoutLine:
			log.Info(ev.Line)
		case launcher.EventStderrLine:
			log.Warn(ev.Line)
		case launcher.EventExited:
			log.Info("backend process exited", "code", ev.ExitCode)
			return
		case launcher.EventLaunchFailed:
			log.Error("backend launch failed", "error", ev.Err)
			return
		}
	}
}

func (s *Supervisor) failStart(stage string, port int, err error) error {
	metrics.IncStartFailure(stage)
	s.setState(StateFailed)
	s.record(history.EventFailed, port, 0, s.strategyLabel(), err.Error())
	s.logger.Error("backend start failed", "stage", stage, "error", err)
	return fmt.Errorf("start backend (%s): %w", stage, err)
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	for _, other := range allStates {
		metrics.SetState(string(other), other == st)
	}
}

// record sends a lifecycle event to the history sink, best-effort and
// off the caller's path.
func (s *Supervisor) record(t history.EventType, port, pid int, strategy, detail string) {
	if s.opts.History == nil {
		return
	}
	e := history.Event{
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Port:       port,
		PID:        pid,
		Strategy:   strategy,
		Detail:     detail,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.opts.History.Send(ctx, e); err != nil {
			s.logger.Debug("history sink send", "error", err)
		}
	}()
}

func (s *Supervisor) strategyLabel() string {
	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()
	if h == nil {
		return ""
	}
	return string(h.Strategy())
}
