// Package dedupe collapses predictions so each institution appears once.
package dedupe

import (
	"strings"

	"github.com/okian/cutoff/internal/domain/model"
)

// BestPerInstitution keeps one prediction per institution name (case and
// surrounding whitespace ignored). The kept variant has the higher
// probability, then the higher mean score, then the more recent year; on a
// full tie the first one seen stays. Output order follows the first
// appearance of each institution. The second return value is the number of
// predictions dropped.
func BestPerInstitution(preds []model.Prediction) ([]model.Prediction, int) {
	out := make([]model.Prediction, 0, len(preds))
	seen := make(map[string]int, len(preds))

	for _, p := range preds {
		name := strings.ToLower(strings.TrimSpace(p.Institution))
		i, ok := seen[name]
		if !ok {
			seen[name] = len(out)
			out = append(out, p)
			continue
		}
		if Better(p, out[i]) {
			out[i] = p
		}
	}
	return out, len(preds) - len(out)
}

// Better reports whether a should replace b as an institution's representative.
func Better(a, b model.Prediction) bool {
	if a.Probability != b.Probability {
		return a.Probability > b.Probability
	}
	if a.Score.Mean != b.Score.Mean {
		return a.Score.Mean > b.Score.Mean
	}
	return a.Year > b.Year
}
