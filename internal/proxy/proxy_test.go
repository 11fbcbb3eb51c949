package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type fixedEndpoint string

func (e fixedEndpoint) BaseURL() string { return string(e) }

func newClient(baseURL string) *Client {
	return New(Config{Endpoint: fixedEndpoint(baseURL)})
}

func TestDoDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/thing", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"alpha","count":2}`))
	}))
	defer srv.Close()

	type thing struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	got, err := Do[thing](context.Background(), newClient(srv.URL), http.MethodGet, "/api/thing", nil)
	require.NoError(t, err)
	require.Equal(t, thing{Name: "alpha", Count: 2}, got)
}

func TestDoSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "docs", body["name"])
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := Do[map[string]any](context.Background(), newClient(srv.URL), http.MethodPost, "/api/thing",
		map[string]any{"name": "docs"})
	require.NoError(t, err)
}

func TestDoBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"knowledge base not found: kb-9"}`))
	}))
	defer srv.Close()

	_, err := Do[map[string]any](context.Background(), newClient(srv.URL), http.MethodGet, "/api/thing", nil)
	var be *BackendError
	require.ErrorAs(t, err, &be)
	require.Equal(t, http.StatusNotFound, be.Status)
	require.Contains(t, be.Body, "kb-9")
	// The flattened message keeps both status and body for the UI.
	require.Contains(t, err.Error(), "404")
	require.Contains(t, err.Error(), "knowledge base not found")
}

func TestDoRequestError(t *testing.T) {
	// Nothing listens on this endpoint; the dial must fail.
	_, err := Do[map[string]any](context.Background(), newClient("http://127.0.0.1:1"), http.MethodGet, "/health", nil)
	var re *RequestError
	require.ErrorAs(t, err, &re)
}

func TestDoRequestErrorOnPortZero(t *testing.T) {
	// The endpoint of an idle supervisor resolves to port 0. A call
	// issued before the backend is up must fail, not hang.
	_, err := Do[map[string]any](context.Background(), newClient("http://127.0.0.1:0"), http.MethodGet, "/health", nil)
	var re *RequestError
	require.ErrorAs(t, err, &re)
}

func TestDoDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	type shaped struct {
		Name string `json:"name"`
	}
	_, err := Do[shaped](context.Background(), newClient(srv.URL), http.MethodGet, "/api/thing", nil)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
}
