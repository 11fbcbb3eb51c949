package supervisor

import "errors"

var (
	// ErrNoPortAvailable reports that every candidate port in the scan
	// range was occupied. Startup must abort; there is no retry.
	ErrNoPortAvailable = errors.New("no available backend port in range")

	// ErrReadinessTimeout reports that the backend never answered the
	// health probe within the overall deadline.
	ErrReadinessTimeout = errors.New("backend failed to become ready before deadline")
)
