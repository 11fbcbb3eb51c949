package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/henribesnard/ragkit/internal/metrics"
)

// Endpoint resolves the backend's current base URL. The supervisor
// implements it; tests substitute fixed addresses.
type Endpoint interface {
	BaseURL() string
}

// Client turns (method, path, optional JSON body) triples into HTTP
// calls against the supervised backend. A fresh http.Client is built
// per call: the backend is loopback-local and the command rate is
// UI-driven, so connection pooling buys nothing and a stale pooled
// connection to a restarted backend could hurt.
type Client struct {
	endpoint Endpoint
	timeout  time.Duration
	logger   *slog.Logger
}

// Config holds client configuration.
type Config struct {
	Endpoint Endpoint
	Timeout  time.Duration // per-call timeout, default 30s
	Logger   *slog.Logger
}

// New creates a request proxy bound to the given endpoint.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{endpoint: cfg.Endpoint, timeout: cfg.Timeout, logger: cfg.Logger}
}

// Do issues the call and decodes the response body into T.
// Failures map onto the three proxy error kinds: *RequestError for
// transport problems, *BackendError for non-2xx responses (with the
// body text preserved), *DecodeError for shape mismatches.
func Do[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return zero, &RequestError{Err: err}
		}
		reader = bytes.NewReader(data)
	}

	url := c.endpoint.BaseURL() + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return zero, &RequestError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	metrics.IncProxyRequest(method)
	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		metrics.IncProxyError("request")
		c.logger.Debug("proxied request failed", "method", method, "path", path, "error", err)
		return zero, &RequestError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(resp.Body)
		metrics.IncProxyError("backend")
		c.logger.Debug("backend returned error", "method", method, "path", path, "status", resp.StatusCode)
		return zero, &BackendError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(text))}
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.IncProxyError("decode")
		return zero, &DecodeError{Err: err}
	}
	return out, nil
}
