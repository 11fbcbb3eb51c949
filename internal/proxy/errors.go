package proxy

import "fmt"

// The three failure kinds a proxied call can surface. The command layer
// flattens all of them to a single string for the UI, but tests and the
// health-check special case distinguish them with errors.As.

// BackendError is a non-success HTTP response from the backend, carrying
// the status and the response body text.
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (%d): %s", e.Status, e.Body)
}

// RequestError is a transport-level failure: connection refused, DNS,
// timeout. This is also what a call issued before the backend is up
// resolves to (port 0 never connects).
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return fmt.Sprintf("request failed: %v", e.Err) }
func (e *RequestError) Unwrap() error { return e.Err }

// DecodeError is a success response whose body does not match the
// caller's expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode response: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }
