package repository

import "github.com/okian/cutoff/pkg/logger"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithLogger sets the logger used to report the loaded dataset.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSource records where the dataset came from, for logs.
func WithSource(source string) Option {
	return func(s *MemoryStore) {
		s.source = source
	}
}
