package devstub

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthFailsFirstProbes(t *testing.T) {
	stub := New(Options{FailHealthProbes: 2})
	srv := httptest.NewServer(stub.Handler())
	defer srv.Close()

	for i, want := range []int{503, 503, 200, 200} {
		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatalf("probe %d: %v", i, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != want {
			t.Fatalf("probe %d: status = %d, want %d", i, resp.StatusCode, want)
		}
	}
}

func TestShutdownSignals(t *testing.T) {
	stub := New(Options{})
	srv := httptest.NewServer(stub.Handler())
	defer srv.Close()

	select {
	case <-stub.ShutdownRequested():
		t.Fatal("shutdown signaled before request")
	default:
	}

	resp, err := http.Post(srv.URL+"/shutdown", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()

	select {
	case <-stub.ShutdownRequested():
	default:
		t.Fatal("shutdown not signaled")
	}

	// A second shutdown request must not panic on the closed channel.
	resp, err = http.Post(srv.URL+"/shutdown", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
}
