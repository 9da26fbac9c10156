// Package consolidate merges the per-round records of a program into one
// all-rounds summary.
package consolidate

import (
	"math"
	"strings"

	"github.com/okian/cutoff/internal/domain/model"
	"github.com/okian/cutoff/internal/domain/stats"
)

// Key identifies a program across rounds. Text fields are trimmed and
// lower-cased; the round label is not part of the key.
type Key struct {
	Institution     string
	Program         string
	Quota           string
	Category        string
	Community       string
	InstitutionType string
	Year            int
}

// KeyOf builds the grouping key of an identity.
func KeyOf(id model.Identity) Key {
	return Key{
		Institution:     Normalize(id.Institution),
		Program:         Normalize(id.Program),
		Quota:           Normalize(id.Quota),
		Category:        Normalize(id.Category),
		Community:       Normalize(id.Community),
		InstitutionType: Normalize(id.InstitutionType),
		Year:            id.Year,
	}
}

// Normalize is the case and whitespace folding used for every text comparison.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Result holds the summaries plus counters for data-quality diagnostics.
type Result struct {
	Summaries []model.Summary
	// InvalidObservations counts (mean, std) pairs dropped while pooling.
	InvalidObservations int
	// MalformedRecords counts records with blank identity fields.
	MalformedRecords int
}

// Consolidate groups records by Key and pools each group's statistics.
// Summaries come out in the order their key was first seen.
func Consolidate(records []model.HistoricalRecord) Result {
	var res Result
	index := make(map[Key]int, len(records))
	groups := make([][]model.HistoricalRecord, 0)

	for _, rec := range records {
		if rec.Blank() {
			res.MalformedRecords++
		}
		k := KeyOf(rec.Identity)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], rec)
	}

	res.Summaries = make([]model.Summary, 0, len(groups))
	for _, group := range groups {
		sum, dropped := summarize(group)
		res.InvalidObservations += dropped
		res.Summaries = append(res.Summaries, sum)
	}
	return res
}

func summarize(group []model.HistoricalRecord) (model.Summary, int) {
	rank, droppedRank := merge(group, func(r model.HistoricalRecord) model.Stats { return r.Rank })
	score, droppedScore := merge(group, func(r model.HistoricalRecord) model.Stats { return r.Score })

	rounds := make([]model.HistoricalRecord, len(group))
	copy(rounds, group)

	return model.Summary{
		Identity: group[0].Identity,
		Scope:    model.ScopeAllRounds,
		Rank:     rank,
		Score:    score,
		Rounds:   rounds,
	}, droppedRank + droppedScore
}

// merge pools one metric of the group. Bounds come from the raw per-round
// min/max, never from the pooled distribution. A metric with no valid round
// has a NaN mean and std.
func merge(group []model.HistoricalRecord, metric func(model.HistoricalRecord) model.Stats) (model.Stats, int) {
	obs := make([]stats.Observation, len(group))
	mins := make([]float64, len(group))
	maxs := make([]float64, len(group))
	for i, rec := range group {
		s := metric(rec)
		obs[i] = stats.Observation{Mean: s.Mean, Std: s.Std}
		mins[i] = s.Min
		maxs[i] = s.Max
	}

	pooled, dropped := stats.CombineCounted(obs)
	if dropped == len(group) {
		pooled = stats.Observation{Mean: math.NaN(), Std: math.NaN()}
	}
	lo, _ := stats.Bounds(mins)
	_, hi := stats.Bounds(maxs)
	return model.Stats{Mean: pooled.Mean, Std: pooled.Std, Min: lo, Max: hi}, dropped
}
