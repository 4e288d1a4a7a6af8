package log

// Standard attribute keys for selection-unit logging. One (strategy, family,
// cohort) triple identifies a unit of pipeline work, so every log line emitted
// while fitting a unit should carry these.
const (
	// StrategyKey identifies the selection strategy ("stepwise", "lasso", "forest").
	StrategyKey = "unit.strategy"

	// FamilyKey identifies the comorbidity-index family ("elixhauser", "charlson", "hcc").
	FamilyKey = "unit.family"

	// CohortKey identifies the patient cohort being fit.
	CohortKey = "unit.cohort"

	// SamplesKey is the number of patient rows in the frame being fit.
	SamplesKey = "data.samples"

	// TermsKey is the number of candidate predictor terms.
	TermsKey = "data.terms"

	// DurationMsKey is elapsed wall time for a fit in milliseconds.
	DurationMsKey = "duration.ms"

	// PhaseKey distinguishes sub-steps of a strategy ("tune", "rfe", "final").
	PhaseKey = "unit.phase"
)
