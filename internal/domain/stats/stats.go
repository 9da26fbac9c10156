// Package stats merges per-round metric summaries into one distribution.
//
// Rounds are pooled without weights because per-round sample sizes are not
// part of the dataset. If counts become available, Combine should switch to
// a weighted pooling formula.
package stats

import "math"

// Observation is the (mean, standard deviation) pair of one round.
type Observation struct {
	Mean float64
	Std  float64
}

// Valid reports whether o can take part in pooling.
func Valid(o Observation) bool {
	return isFinite(o.Mean) && isFinite(o.Std) && o.Std >= 0
}

// Combine pools observations into a single mean and standard deviation.
// Invalid observations are dropped; with nothing left the result is (0, 0).
func Combine(obs []Observation) Observation {
	out, _ := CombineCounted(obs)
	return out
}

// CombineCounted is Combine that also reports how many observations were dropped.
func CombineCounted(obs []Observation) (Observation, int) {
	var (
		n          int
		sumMean    float64
		sumSecMoms float64
	)
	for _, o := range obs {
		if !Valid(o) {
			continue
		}
		n++
		sumMean += o.Mean
		// E[X^2] of a round is its variance plus its squared mean.
		sumSecMoms += o.Std*o.Std + o.Mean*o.Mean
	}
	dropped := len(obs) - n
	if n == 0 {
		return Observation{}, dropped
	}

	mean := sumMean / float64(n)
	variance := sumSecMoms/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return Observation{Mean: mean, Std: math.Sqrt(variance)}, dropped
}

// Bounds returns the smallest and largest finite values.
// Both are NaN when no value is finite.
func Bounds(values []float64) (lo, hi float64) {
	lo, hi = math.NaN(), math.NaN()
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Sample returns the mean and the n-1 standard deviation of values.
// A single value has a deviation of 0; an empty slice yields NaN for both.
func Sample(values []float64) (mean, std float64) {
	n := len(values)
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)
	if n == 1 {
		return mean, 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(n-1))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
