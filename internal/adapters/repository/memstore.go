package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/okian/cutoff/internal/domain/model"
	"github.com/okian/cutoff/pkg/logger"
	"github.com/okian/cutoff/pkg/metrics"
)

// MemoryStore is an immutable in-memory Store. It is safe for concurrent use.
type MemoryStore struct {
	records []model.HistoricalRecord
	options   FilterOptions
	malformed int
	source    string
	log     logger.Logger
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore copies records into a new store and indexes its filter values.
func NewMemoryStore(ctx context.Context, records []model.HistoricalRecord, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		records: append([]model.HistoricalRecord(nil), records...),
		source:  "memory",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.options = buildOptions(s.records)
	for i := range s.records {
		if s.records[i].Blank() {
			s.malformed++
		}
	}

	metrics.UpdateDatasetRecords(len(s.records))
	if s.log != nil {
		s.log.Info(ctx, "dataset loaded",
			logger.String("source", s.source),
			logger.Int("records", len(s.records)),
			logger.Int("programs", len(s.options.Programs)),
		)
		if s.malformed > 0 {
			s.log.Warn(ctx, "dataset has malformed records",
				logger.String("source", s.source),
				logger.Int("malformedRecords", s.malformed),
			)
		}
	}
	return s
}

// Malformed returns the number of records with a blank identity field.
// They are still grouped and scored.
func (s *MemoryStore) Malformed() int {
	return s.malformed
}

// Records implements Store.
func (s *MemoryStore) Records(_ context.Context) []model.HistoricalRecord {
	return s.records
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.records)
}

// Options implements Store. The returned slices are copies.
func (s *MemoryStore) Options(_ context.Context) FilterOptions {
	return FilterOptions{
		Programs:         append([]string(nil), s.options.Programs...),
		Communities:      append([]string(nil), s.options.Communities...),
		Categories:       append([]string(nil), s.options.Categories...),
		Quotas:           append([]string(nil), s.options.Quotas...),
		InstitutionTypes: append([]string(nil), s.options.InstitutionTypes...),
		Years:            append([]int(nil), s.options.Years...),
	}
}

type valueSet map[string]struct{}

func (v valueSet) add(s string) {
	if s = strings.TrimSpace(s); s != "" {
		v[s] = struct{}{}
	}
}

func (v valueSet) sorted() []string {
	out := make([]string, 0, len(v))
	for s := range v {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func buildOptions(records []model.HistoricalRecord) FilterOptions {
	programs, communities, categories := valueSet{}, valueSet{}, valueSet{}
	quotas, types := valueSet{}, valueSet{}
	years := map[int]struct{}{}
	for i := range records {
		r := &records[i]
		programs.add(r.Program)
		communities.add(r.Community)
		categories.add(r.Category)
		quotas.add(r.Quota)
		types.add(r.InstitutionType)
		if r.Year > 0 {
			years[r.Year] = struct{}{}
		}
	}
	ys := make([]int, 0, len(years))
	for y := range years {
		ys = append(ys, y)
	}
	sort.Ints(ys)
	return FilterOptions{
		Programs:         programs.sorted(),
		Communities:      communities.sorted(),
		Categories:       categories.sorted(),
		Quotas:           quotas.sorted(),
		InstitutionTypes: types.sorted(),
		Years:            ys,
	}
}
