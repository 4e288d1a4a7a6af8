// Package selection implements the three model-selection strategies compared
// by the pipeline — forward stepwise logistic regression, cross-validated
// lasso, and random-forest importance with RFE — behind a single Strategy
// interface so the orchestration loop treats them uniformly.
package selection

import (
	"github.com/clinsight/readmit/dataset"
	"github.com/clinsight/readmit/forest"
)

// Config carries every tunable of the selection strategies. It replaces the
// global constants of ad-hoc analysis scripts: one value, passed explicitly.
type Config struct {
	// Stepwise.
	StepwiseMaxSteps int

	// Lasso.
	LassoFolds   int
	PenaltyHi    float64
	PenaltyLo    float64
	PenaltyCount int

	// Forest.
	ForestFolds int
	ForestTrees int

	// Shared.
	Seed        int64
	FoldWorkers int // cap on within-strategy fold parallelism

	// CacheDir, when non-empty, is where forest fit bundles are written.
	CacheDir string
}

// DefaultConfig returns the reference-run configuration.
func DefaultConfig() Config {
	return Config{
		StepwiseMaxSteps: 15,
		LassoFolds:       10,
		PenaltyHi:        1e10,
		PenaltyLo:        1e-2,
		PenaltyCount:     100,
		ForestFolds:      5,
		ForestTrees:      200,
		Seed:             7,
		FoldWorkers:      1,
	}
}

// TermResult is one retained term's contribution to a selection result. For
// regression strategies Estimate is the odds ratio (stepwise) or the raw
// coefficient (lasso); for the forest it is the importance score. HasCI
// distinguishes estimates that carry Wald bounds.
type TermResult struct {
	Term     string
	Estimate float64
	Lower    float64
	Upper    float64
	PValue   float64
	HasCI    bool
}

// Result is the immutable output of one (strategy, family, cohort) unit.
type Result struct {
	Strategy string
	Family   string
	Cohort   string
	Terms    []TermResult

	// ZeroTerms lists family terms the lasso shrank exactly to zero in this
	// cohort; the reporting layer intersects these across cohorts to flag
	// never-selected terms.
	ZeroTerms []string

	// Forest diagnostics.
	BestMTry int
	RFECurve []forest.RFEPoint
}

// Strategy is one model-selection procedure applied to a per-cohort modeling
// frame. Implementations must not retain or mutate the frame.
type Strategy interface {
	Name() string
	Select(frame *dataset.ModelFrame, cohort string, cfg Config) (*Result, error)
}
