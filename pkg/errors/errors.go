// Package errors provides the structured error types used throughout the
// readmission pipeline, built on cockroachdb/errors so every failure carries a
// stack trace. Each domain error type also implements zerolog's ObjectMarshaler
// so structured logs carry the failure fields, not just a message string.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// InvalidFractionError indicates a train fraction outside the open interval (0,1).
type InvalidFractionError struct {
	Op       string
	Fraction float64
}

func (e *InvalidFractionError) Error() string {
	return fmt.Sprintf("readmit: %s: train fraction must be in (0,1), got %g", e.Op, e.Fraction)
}

// MarshalZerologObject adds the structured failure fields to a zerolog event.
func (e *InvalidFractionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Float64("fraction", e.Fraction).
		Str("type", "InvalidFractionError")
}

// NewInvalidFraction creates an InvalidFractionError with a stack trace.
func NewInvalidFraction(op string, fraction float64) error {
	return errors.WithStack(&InvalidFractionError{Op: op, Fraction: fraction})
}

// EmptyInputError indicates a table or vector with zero rows where at least one
// row is required.
type EmptyInputError struct {
	Op   string
	What string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("readmit: %s: %s has no rows", e.Op, e.What)
}

// MarshalZerologObject adds the structured failure fields to a zerolog event.
func (e *EmptyInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("what", e.What).
		Str("type", "EmptyInputError")
}

// NewEmptyInput creates an EmptyInputError with a stack trace.
func NewEmptyInput(op, what string) error {
	return errors.WithStack(&EmptyInputError{Op: op, What: what})
}

// NoMatchingColumnsError indicates that a predictor-family prefix matched zero
// columns of the patient table.
type NoMatchingColumnsError struct {
	Family string
	Prefix string
}

func (e *NoMatchingColumnsError) Error() string {
	return fmt.Sprintf("readmit: family %s: no columns match prefix %q", e.Family, e.Prefix)
}

// MarshalZerologObject adds the structured failure fields to a zerolog event.
func (e *NoMatchingColumnsError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("family", e.Family).
		Str("prefix", e.Prefix).
		Str("type", "NoMatchingColumnsError")
}

// NewNoMatchingColumns creates a NoMatchingColumnsError with a stack trace.
func NewNoMatchingColumns(family, prefix string) error {
	return errors.WithStack(&NoMatchingColumnsError{Family: family, Prefix: prefix})
}

// FitDivergenceError indicates that an iterative fit failed to converge within
// its iteration budget.
type FitDivergenceError struct {
	Model      string
	Iterations int
	Delta      float64
}

func (e *FitDivergenceError) Error() string {
	return fmt.Sprintf("readmit: %s did not converge after %d iterations (last delta %g)",
		e.Model, e.Iterations, e.Delta)
}

// MarshalZerologObject adds the structured failure fields to a zerolog event.
func (e *FitDivergenceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model", e.Model).
		Int("iterations", e.Iterations).
		Float64("delta", e.Delta).
		Str("type", "FitDivergenceError")
}

// NewFitDivergence creates a FitDivergenceError with a stack trace.
func NewFitDivergence(model string, iterations int, delta float64) error {
	return errors.WithStack(&FitDivergenceError{Model: model, Iterations: iterations, Delta: delta})
}

// DegenerateFoldError indicates a cross-validation fold whose training half has
// only one outcome class, which makes a binomial fit undefined.
type DegenerateFoldError struct {
	Fold      int
	Positives int
	Negatives int
}

func (e *DegenerateFoldError) Error() string {
	return fmt.Sprintf("readmit: cv fold %d is degenerate: %d positive, %d negative outcomes",
		e.Fold, e.Positives, e.Negatives)
}

// MarshalZerologObject adds the structured failure fields to a zerolog event.
func (e *DegenerateFoldError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("fold", e.Fold).
		Int("positives", e.Positives).
		Int("negatives", e.Negatives).
		Str("type", "DegenerateFoldError")
}

// NewDegenerateFold creates a DegenerateFoldError with a stack trace.
func NewDegenerateFold(fold, positives, negatives int) error {
	return errors.WithStack(&DegenerateFoldError{Fold: fold, Positives: positives, Negatives: negatives})
}

// InsufficientPredictorsError indicates that a strategy was invoked with zero
// candidate predictors.
type InsufficientPredictorsError struct {
	Strategy string
	Family   string
}

func (e *InsufficientPredictorsError) Error() string {
	return fmt.Sprintf("readmit: %s: family %s yields zero candidate predictors", e.Strategy, e.Family)
}

// MarshalZerologObject adds the structured failure fields to a zerolog event.
func (e *InsufficientPredictorsError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("strategy", e.Strategy).
		Str("family", e.Family).
		Str("type", "InsufficientPredictorsError")
}

// NewInsufficientPredictors creates an InsufficientPredictorsError with a stack trace.
func NewInsufficientPredictors(strategy, family string) error {
	return errors.WithStack(&InsufficientPredictorsError{Strategy: strategy, Family: family})
}

// DimensionError indicates a shape mismatch between related inputs.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns
}

func (e *DimensionError) Error() string {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("readmit: %s: dimension mismatch on %s: expected %d, got %d",
		e.Op, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured failure fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimension creates a DimensionError with a stack trace.
func NewDimension(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValueError indicates an argument whose value is out of range or otherwise
// unusable for the requested operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("readmit: %s: %s", e.Op, e.Message)
}

// NewValue creates a ValueError with a stack trace.
func NewValue(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// WrapIO wraps a filesystem or codec error with the path it concerns. All
// export/read failures surface through this so the manifest can distinguish IO
// failures from modeling failures.
func WrapIO(err error, op, path string) error {
	return errors.Wrapf(err, "readmit: %s: %s", op, path)
}

// Is reports whether err matches target, unwrapping as needed.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message, preserving the stack trace.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message, preserving the stack trace.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace at the point of the call.
func WithStack(err error) error {
	return errors.WithStack(err)
}
