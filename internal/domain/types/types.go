// Package types contains the wire shapes shared by the API and its clients.
package types

import (
	"math"

	"github.com/okian/cutoff/internal/domain/model"
)

// Filters mirrors model.Filters with the dataset's column vocabulary.
type Filters struct {
	Course      string `json:"course,omitempty"`
	Community   string `json:"community,omitempty"`
	Category    string `json:"category,omitempty"`
	Quota       string `json:"quota,omitempty"`
	CollegeType string `json:"college_type,omitempty"`
}

// ToModel converts the wire filters to domain filters.
func (f Filters) ToModel() model.Filters {
	return model.Filters{
		Program:         f.Course,
		Community:       f.Community,
		Category:        f.Category,
		Quota:           f.Quota,
		InstitutionType: f.CollegeType,
	}
}

// PredictRequest is the body of POST /predict. Score is required.
type PredictRequest struct {
	Score   *float64 `json:"score"`
	Filters Filters  `json:"filters"`
}

// Stats is a metric summary; missing values encode as null.
type Stats struct {
	Mean *float64 `json:"mean"`
	Std  *float64 `json:"std"`
	Min  *float64 `json:"min"`
	Max  *float64 `json:"max"`
}

// Explanation is the audit trail shown next to each probability.
type Explanation struct {
	Method     string   `json:"method"`
	Reason     string   `json:"reason,omitempty"`
	InputScore *float64 `json:"input_score"`
	Mean       *float64 `json:"mean"`
	Std        *float64 `json:"std"`
	Min        *float64 `json:"min"`
	Max        *float64 `json:"max"`
	ZScore     *float64 `json:"z_score"`
	RawScore   float64  `json:"raw_score"`
}

// Prediction is one ranked program.
type Prediction struct {
	College        string      `json:"college"`
	Course         string      `json:"course"`
	CollegeType    string      `json:"college_type"`
	Quota          string      `json:"quota"`
	Community      string      `json:"community"`
	Category       string      `json:"category"`
	Round          string      `json:"round"`
	Year           int         `json:"year"`
	Rank           Stats       `json:"rank"`
	Marks          Stats       `json:"marks"`
	Probability    float64     `json:"probability"`
	Chance         string      `json:"chance"`
	EstimatedRound string      `json:"estimated_round"`
	Explanation    Explanation `json:"explanation"`
}

// PredictResponse is the body returned by POST /predict.
type PredictResponse struct {
	RequestID   string       `json:"request_id"`
	Count       int          `json:"count"`
	Predictions []Prediction `json:"predictions"`
}

// BatchRequest is the body of POST /predict/batch.
type BatchRequest struct {
	Requests []PredictRequest `json:"requests"`
}

// BatchItem is the outcome of one request of a batch, in request order.
type BatchItem struct {
	ID          string       `json:"id"`
	Count       int          `json:"count"`
	Predictions []Prediction `json:"predictions"`
	Error       string       `json:"error,omitempty"`
}

// BatchResponse is the body returned by POST /predict/batch.
type BatchResponse struct {
	RequestID string      `json:"request_id"`
	Results   []BatchItem `json:"results"`
}

// FilterOptions lists the distinct values a client can filter on.
type FilterOptions struct {
	Courses      []string `json:"courses"`
	Communities  []string `json:"communities"`
	Categories   []string `json:"categories"`
	Quotas       []string `json:"quotas"`
	CollegeTypes []string `json:"college_types"`
	Years        []int    `json:"years"`
}

// FromPrediction converts a domain prediction to its wire shape.
func FromPrediction(p model.Prediction) Prediction { //nolint:gocritic // hugeParam: converted by value
	return Prediction{
		College:        p.Institution,
		Course:         p.Program,
		CollegeType:    p.InstitutionType,
		Quota:          p.Quota,
		Community:      p.Community,
		Category:       p.Category,
		Round:          p.Scope.String(),
		Year:           p.Year,
		Rank:           fromStats(p.Rank),
		Marks:          fromStats(p.Score),
		Probability:    p.Probability,
		Chance:         string(p.Chance),
		EstimatedRound: p.EstimatedRound,
		Explanation:    fromExplanation(p.Explanation),
	}
}

// FromPredictions converts a slice, never returning nil.
func FromPredictions(preds []model.Prediction) []Prediction {
	out := make([]Prediction, len(preds))
	for i := range preds {
		out[i] = FromPrediction(preds[i])
	}
	return out
}

func fromStats(s model.Stats) Stats {
	return Stats{Mean: Num(s.Mean), Std: Num(s.Std), Min: Num(s.Min), Max: Num(s.Max)}
}

func fromExplanation(e model.Explanation) Explanation {
	out := Explanation{
		Method:     string(e.Method),
		Reason:     string(e.Reason),
		InputScore: Num(e.InputScore),
		Mean:       Num(e.Mean),
		Std:        Num(e.Std),
		Min:        Num(e.Min),
		Max:        Num(e.Max),
		RawScore:   e.RawScore,
	}
	if e.ZScore != nil {
		out.ZScore = Num(*e.ZScore)
	}
	return out
}

// Num returns a pointer to f, or nil when f cannot be encoded as JSON.
func Num(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
