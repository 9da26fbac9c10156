package summarize

import "errors"

var (
	// ErrNoInputs is returned when no CSV file was given.
	ErrNoInputs = errors.New("summarize: no input files")
	// ErrReadInput wraps failures reading or parsing a CSV file.
	ErrReadInput = errors.New("summarize: read input")
	// ErrWriteOutput wraps failures writing the dataset.
	ErrWriteOutput = errors.New("summarize: write output")
)
