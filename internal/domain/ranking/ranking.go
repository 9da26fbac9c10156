// Package ranking turns a historical dataset, a candidate score and filters
// into an ordered list of admission predictions.
//
// Everything here is a pure function of its inputs. The dataset is only
// read, so one copy may be shared by concurrent callers.
package ranking

import (
	"sort"

	"github.com/okian/cutoff/internal/domain/consolidate"
	"github.com/okian/cutoff/internal/domain/dedupe"
	"github.com/okian/cutoff/internal/domain/model"
	"github.com/okian/cutoff/internal/domain/rounds"
	"github.com/okian/cutoff/internal/domain/scoring"
)

// MinRelevance is the lowest probability worth reporting.
const MinRelevance = 0.10

// Report counts what happened to the dataset during one prediction.
type Report struct {
	Records             int
	Consolidated        int
	Matched             int
	BelowThreshold      int
	Duplicates          int
	Returned            int
	InvalidObservations int
	MalformedRecords    int
	Methods             map[model.Method]int
}

// Predict ranks the programs of dataset for a candidate with score.
func Predict(score float64, f model.Filters, dataset []model.HistoricalRecord) []model.Prediction {
	out, _ := PredictWithReport(score, f, dataset)
	return out
}

// PredictWithReport is Predict plus diagnostics about the run.
func PredictWithReport(score float64, f model.Filters, dataset []model.HistoricalRecord) ([]model.Prediction, Report) {
	rep := Report{
		Records: len(dataset),
		Methods: make(map[model.Method]int),
	}

	cons := consolidate.Consolidate(dataset)
	rep.Consolidated = len(cons.Summaries)
	rep.InvalidObservations = cons.InvalidObservations
	rep.MalformedRecords = cons.MalformedRecords

	scored := make([]model.Prediction, 0, len(cons.Summaries))
	for i := range cons.Summaries {
		sum := &cons.Summaries[i]
		if !Matches(sum.Identity, f) {
			continue
		}
		rep.Matched++

		exp := scoring.FromStats(score, sum.Score)
		rep.Methods[exp.Method]++
		if exp.RawScore < MinRelevance {
			rep.BelowThreshold++
			continue
		}
		scored = append(scored, model.Prediction{
			Identity:       sum.Identity,
			Scope:          sum.Scope,
			Rank:           sum.Rank,
			Score:          sum.Score,
			Probability:    exp.RawScore,
			Chance:         scoring.TierFor(exp.RawScore),
			EstimatedRound: rounds.Estimate(sum.Rounds, score),
			Explanation:    exp,
		})
	}

	out, dropped := dedupe.BestPerInstitution(scored)
	rep.Duplicates = dropped
	Sort(out)
	rep.Returned = len(out)
	return out, rep
}

// Matches applies the five filters with AND semantics. A blank filter, or a
// blank field on the record, matches anything.
func Matches(id model.Identity, f model.Filters) bool {
	return field(id.Program, f.Program) &&
		field(id.Community, f.Community) &&
		field(id.Category, f.Category) &&
		field(id.Quota, f.Quota) &&
		field(id.InstitutionType, f.InstitutionType)
}

func field(value, want string) bool {
	want = consolidate.Normalize(want)
	if want == "" {
		return true
	}
	value = consolidate.Normalize(value)
	if value == "" {
		return true
	}
	return value == want
}

// Sort orders predictions by probability, then mean score, both descending.
// Equal entries keep their relative order.
func Sort(preds []model.Prediction) {
	sort.SliceStable(preds, func(i, j int) bool {
		if preds[i].Probability != preds[j].Probability {
			return preds[i].Probability > preds[j].Probability
		}
		return preds[i].Score.Mean > preds[j].Score.Mean
	})
}
