package supervisor

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ProbeConfig controls the readiness polling loop. RequestTimeout bounds
// each individual probe so one hung connection cannot consume the whole
// readiness window.
type ProbeConfig struct {
	Timeout        time.Duration
	Interval       time.Duration
	RequestTimeout time.Duration
}

// WaitUntilReady polls GET /health on the given loopback port until a
// success status is seen or the overall deadline elapses. Connection
// errors and non-2xx responses are both just "not ready yet"; only the
// deadline terminates the loop with ErrReadinessTimeout.
func WaitUntilReady(ctx context.Context, port int, cfg ProbeConfig) error {
	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	client := &http.Client{Timeout: cfg.RequestTimeout}
	deadline := time.Now().Add(cfg.Timeout)

	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			ok := resp.StatusCode >= 200 && resp.StatusCode < 300
			_ = resp.Body.Close()
			if ok {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Interval):
		}
	}
	return ErrReadinessTimeout
}
