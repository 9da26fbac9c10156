package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrNoStore      = errors.New("service has no dataset store")
	ErrBackpressure = errors.New("batch queue is full")
)
