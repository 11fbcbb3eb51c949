package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// Second call is a no-op, not a duplicate registration error.
	if err := Register(reg); err != nil {
		t.Fatalf("second Register: %v", err)
	}
}

func TestHelpersAfterRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	IncStart()
	IncStop()
	IncStartFailure("readiness")
	ObserveReadiness(1.25)
	SetState("ready", true)
	SetState("idle", false)
	IncProxyRequest("GET")
	IncProxyError("backend")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := map[string]bool{}
	for _, mf := range mfs {
		found[mf.GetName()] = true
	}
	for _, name := range []string{
		"ragkit_backend_starts_total",
		"ragkit_backend_stops_total",
		"ragkit_backend_start_failures_total",
		"ragkit_backend_readiness_duration_seconds",
		"ragkit_backend_current_state",
		"ragkit_proxy_requests_total",
		"ragkit_proxy_errors_total",
	} {
		if !found[name] {
			t.Errorf("metric %s not gathered", name)
		}
	}
}

func TestHandlerNotNil(t *testing.T) {
	if Handler() == nil {
		t.Fatal("Handler returned nil")
	}
}
