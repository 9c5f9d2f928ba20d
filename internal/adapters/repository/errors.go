package repository

import "errors"

// Sentinel kinds for arena errors.
var (
	ErrNotFound = errors.New("team not found")
)
