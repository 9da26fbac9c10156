package model

// Filters narrows the dataset before scoring. Blank values match everything.
type Filters struct {
	Program         string
	Community       string
	Category        string
	Quota           string
	InstitutionType string
}

// Tier is a coarse qualitative bucket for a probability.
type Tier string

// Chance tiers.
const (
	TierLow    Tier = "Low"
	TierMedium Tier = "Medium"
	TierHigh   Tier = "High"
)

// Method names the branch of the probability model that produced a score.
type Method string

// Probability methods.
const (
	MethodNormalCDF Method = "normal_cdf"
	MethodMinMax    Method = "min_max_linear"
	MethodFallback  Method = "fallback"
)

// FallbackReason tells the fallback branches apart. Empty for other methods.
type FallbackReason string

// Fallback reasons.
const (
	ReasonNone           FallbackReason = ""
	ReasonUndefinedInput FallbackReason = "undefined_input"
	ReasonBelowFloor     FallbackReason = "below_floor"
	ReasonDegenerate     FallbackReason = "degenerate"
)

// Explanation is the audit trail of one probability computation.
// ZScore is nil unless the normal CDF method was used.
type Explanation struct {
	Method     Method
	Reason     FallbackReason
	InputScore float64
	Mean       float64
	Std        float64
	Min        float64
	Max        float64
	ZScore     *float64
	RawScore   float64
}

// Prediction is a consolidated program scored against a candidate.
type Prediction struct {
	Identity
	Scope          RoundScope
	Rank           Stats
	Score          Stats
	Probability    float64
	Chance         Tier
	EstimatedRound string
	Explanation    Explanation
}

// Job is one prediction request travelling through the batch queue.
type Job struct {
	ID      string
	Score   float64
	Filters Filters
	Reply   chan<- JobResult
}

// JobResult carries the outcome of a Job back to its submitter.
type JobResult struct {
	ID          string
	Predictions []Prediction
	Err         error
}
