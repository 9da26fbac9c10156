// Package scoring converts a candidate's score into an admission probability
// using the statistics of a program's historical admissions.
package scoring

import (
	"math"

	"github.com/okian/cutoff/internal/domain/model"
)

// Tier thresholds and degenerate-data heuristics.
const (
	highTierThreshold   = 0.75
	mediumTierThreshold = 0.45
	degenerateAbove     = 0.85
	degenerateBelow     = 0.15
)

// Abramowitz & Stegun 7.1.26 coefficients, |error| <= 1.5e-7.
const (
	erfP  = 0.3275911
	erfA1 = 0.254829592
	erfA2 = -0.284496736
	erfA3 = 1.421413741
	erfA4 = -1.453152027
	erfA5 = 1.061405429
)

// FromStats estimates the probability that score clears a program with
// summary s. The first matching branch wins:
//
//  1. score or mean not finite: fallback, 0
//  2. score below a finite min: fallback, 0
//  3. std > 0: normal CDF of the z-score
//  4. finite min < max: linear position between min and max
//  5. otherwise: 0.85 at or above the mean, 0.15 below
func FromStats(score float64, s model.Stats) model.Explanation {
	exp := model.Explanation{
		InputScore: score,
		Mean:       s.Mean,
		Std:        s.Std,
		Min:        s.Min,
		Max:        s.Max,
	}

	switch {
	case !isFinite(score) || !isFinite(s.Mean):
		exp.Method = model.MethodFallback
		exp.Reason = model.ReasonUndefinedInput
	case isFinite(s.Min) && score < s.Min:
		exp.Method = model.MethodFallback
		exp.Reason = model.ReasonBelowFloor
	case isFinite(s.Std) && s.Std > 0:
		z := (score - s.Mean) / s.Std
		exp.Method = model.MethodNormalCDF
		exp.ZScore = &z
		exp.RawScore = clamp01(NormalCDF(z))
	case isFinite(s.Min) && isFinite(s.Max) && s.Max > s.Min:
		exp.Method = model.MethodMinMax
		exp.RawScore = clamp01((score - s.Min) / (s.Max - s.Min))
	default:
		exp.Method = model.MethodFallback
		exp.Reason = model.ReasonDegenerate
		exp.RawScore = degenerateBelow
		if score >= s.Mean {
			exp.RawScore = degenerateAbove
		}
	}
	return exp
}

// TierFor buckets a probability into a chance tier.
func TierFor(raw float64) model.Tier {
	switch {
	case raw >= highTierThreshold:
		return model.TierHigh
	case raw >= mediumTierThreshold:
		return model.TierMedium
	default:
		return model.TierLow
	}
}

// NormalCDF returns the standard normal cumulative probability at z.
func NormalCDF(z float64) float64 {
	return 0.5 * (1 + erf(z/math.Sqrt2))
}

func erf(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1
		x = -x
	}
	t := 1 / (1 + erfP*x)
	poly := ((((erfA5*t+erfA4)*t+erfA3)*t+erfA2)*t + erfA1) * t
	return sign * (1 - poly*math.Exp(-x*x))
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
