// Package repository holds the historical cutoff dataset the predictor reads.
package repository

import (
	"context"

	"github.com/okian/cutoff/internal/domain/model"
)

// FilterOptions lists the distinct, non-blank values present in the dataset,
// sorted for display.
type FilterOptions struct {
	Programs         []string
	Communities      []string
	Categories       []string
	Quotas           []string
	InstitutionTypes []string
	Years            []int
}

// Store provides read access to historical records.
type Store interface {
	// Records returns the loaded records. Callers must not modify the slice.
	Records(ctx context.Context) []model.HistoricalRecord

	// Count returns the number of loaded records.
	Count(ctx context.Context) int

	// Options returns the distinct filter values of the dataset.
	Options(ctx context.Context) FilterOptions
}
