package repository

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrReadDataset       = errors.New("read dataset")
	ErrDecodeDataset     = errors.New("decode dataset")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)
