// Package rounds estimates which admission round a candidate would clear.
//
// It works on the per-round records rather than the consolidated summary,
// since round order and round-specific cutoffs are lost once merged.
package rounds

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/okian/cutoff/internal/domain/model"
	"github.com/okian/cutoff/internal/domain/scoring"
)

// NotLikely is returned when no round gives the candidate any chance.
const NotLikely = "Not likely"

// likelyThreshold is the probability at which a round counts as cleared.
const (
	likelyThreshold = 0.5
)

var ordinalPattern = regexp.MustCompile(`\d+`)

// Ordinal extracts the first integer in a round label. Labels without a
// number report ok=false.
func Ordinal(label string) (n int, ok bool) {
	m := ordinalPattern.FindString(label)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		// Digits overflowing int still order after every realistic round.
		return math.MaxInt, true
	}
	return n, true
}

type candidate struct {
	label   string
	ordinal int
	ok      bool
	raw     float64
}

// Estimate returns the earliest round whose own statistics give score a
// probability of at least 0.5, else the earliest with any chance, else NotLikely.
func Estimate(records []model.HistoricalRecord, score float64) string {
	cands := make([]candidate, len(records))
	for i, rec := range records {
		n, ok := Ordinal(rec.Round)
		cands[i] = candidate{
			label:   rec.Round,
			ordinal: n,
			ok:      ok,
			raw:     scoring.FromStats(score, rec.Score).RawScore,
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.ok != b.ok {
			return a.ok // numbered rounds first
		}
		return a.ordinal < b.ordinal
	})

	for _, c := range cands {
		if c.raw >= likelyThreshold {
			return c.label
		}
	}
	for _, c := range cands {
		if c.raw > 0 {
			return c.label
		}
	}
	return NotLikely
}
