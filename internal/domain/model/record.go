// Package model contains domain models passed between layers.
package model

import "strings"

// Stats summarizes one metric (rank or score) of a group of admissions.
// Missing values are NaN.
type Stats struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Identity names a program offering within one admission year.
type Identity struct {
	Institution     string // college name
	Program         string // course, e.g. "MBBS"
	Quota           string
	Category        string
	Community       string
	InstitutionType string // e.g. "Government", "Self Financing"
	Year            int
}

// Blank reports whether any of the textual identity fields is empty.
// Such records still group, but their keys are unstable across datasets.
func (id Identity) Blank() bool {
	for _, f := range []string{id.Institution, id.Program, id.Quota, id.Category, id.Community, id.InstitutionType} {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}

// HistoricalRecord is one admission round's statistics for a program.
// Records are supplied by the dataset loader and never mutated.
type HistoricalRecord struct {
	Identity
	Round string // admission round label, e.g. "Round1"
	Rank  Stats
	Score Stats
}

// RoundScope tags which rounds a summary covers.
type RoundScope uint8

const (
	// ScopeRound marks a summary of one real admission round.
	ScopeRound RoundScope = iota
	// ScopeAllRounds marks a summary merged across every round of a year.
	ScopeAllRounds
)

// String returns the display label of the scope.
func (s RoundScope) String() string {
	if s == ScopeAllRounds {
		return "All Rounds"
	}
	return "Single Round"
}

// Summary is the consolidated view of one program across all rounds.
// Rounds keeps the constituent records in input order.
type Summary struct {
	Identity
	Scope  RoundScope
	Rank   Stats
	Score  Stats
	Rounds []HistoricalRecord
}
