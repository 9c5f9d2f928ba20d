package app

import "errors"

// Sentinel kinds for service lifecycle errors.
var (
	// ErrNotStarted is returned by request paths invoked before Start.
	ErrNotStarted = errors.New("service not started")
)
