package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrShutdownTimeout = errors.New("worker shutdown timed out")
	ErrNoPredictor     = errors.New("worker has no predictor")
)
