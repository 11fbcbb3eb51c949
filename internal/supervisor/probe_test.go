package supervisor

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func probeTarget(t *testing.T, handler http.Handler) int {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.Listener.Addr().(*net.TCPAddr).Port
}

func TestWaitUntilReadyAfterFailures(t *testing.T) {
	var calls atomic.Int32
	port := probeTarget(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	cfg := ProbeConfig{Timeout: 5 * time.Second, Interval: 30 * time.Millisecond, RequestTimeout: time.Second}
	start := time.Now()
	if err := WaitUntilReady(context.Background(), port, cfg); err != nil {
		t.Fatalf("WaitUntilReady: %v", err)
	}
	if got := calls.Load(); got < 4 {
		t.Fatalf("expected at least 4 probes, got %d", got)
	}
	// Three failing probes mean at least three interval waits.
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("readiness reported too early: %v", elapsed)
	}
}

func TestWaitUntilReadyTimeout(t *testing.T) {
	port := probeTarget(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	cfg := ProbeConfig{Timeout: 300 * time.Millisecond, Interval: 30 * time.Millisecond, RequestTimeout: time.Second}
	start := time.Now()
	err := WaitUntilReady(context.Background(), port, cfg)
	if !errors.Is(err, ErrReadinessTimeout) {
		t.Fatalf("expected ErrReadinessTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 300*time.Millisecond || elapsed > 2*time.Second {
		t.Fatalf("deadline not honored: %v", elapsed)
	}
}

func TestWaitUntilReadyConnectionRefused(t *testing.T) {
	base, lns := reserveRange(t, 1)
	for _, ln := range lns {
		_ = ln.Close()
	}

	cfg := ProbeConfig{Timeout: 200 * time.Millisecond, Interval: 30 * time.Millisecond, RequestTimeout: time.Second}
	err := WaitUntilReady(context.Background(), base, cfg)
	if !errors.Is(err, ErrReadinessTimeout) {
		t.Fatalf("expected ErrReadinessTimeout, got %v", err)
	}
}

func TestWaitUntilReadyContextCanceled(t *testing.T) {
	port := probeTarget(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(60 * time.Millisecond)
		cancel()
	}()

	cfg := ProbeConfig{Timeout: 10 * time.Second, Interval: 30 * time.Millisecond, RequestTimeout: time.Second}
	err := WaitUntilReady(ctx, port, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
