// Package model holds the estimator plumbing shared by the glm and forest
// packages: fitted-state tracking and gob persistence for cached fit bundles.
package model

// EstimatorState tracks whether an estimator has been fit.
type EstimatorState int

const (
	// NotFitted is the zero state of a fresh estimator.
	NotFitted EstimatorState = iota
	// Fitted marks an estimator whose parameters are usable.
	Fitted
)

// BaseEstimator is embedded by estimators that need fitted-state tracking.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the estimator has been fit.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fit.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to the unfit state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
