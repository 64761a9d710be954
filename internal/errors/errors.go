// Package errors defines the error taxonomy of the panel-build run.
//
// Three kinds are fatal and abort the run before any output is committed:
// missing source, schema violation and invalid date range. Data quality
// findings are not errors; they are logged by the component that applied
// the documented default and processing continues.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a run error.
type Kind string

const (
	// KindMissingSource marks a required input file that is absent.
	KindMissingSource Kind = "missing_source"
	// KindSchema marks a required column that is absent from an input table.
	KindSchema Kind = "schema"
	// KindInvalidRange marks a configured start date after the end date.
	KindInvalidRange Kind = "invalid_range"
	// KindExecution marks any other failure during a run step.
	KindExecution Kind = "execution"
)

// RunError is a classified, step-attributed run failure.
type RunError struct {
	Kind    Kind
	Step    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	if e == nil {
		return "unknown run error"
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Step, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewMissingSource reports an absent required input file.
func NewMissingSource(step, path string) *RunError {
	return &RunError{
		Kind:    KindMissingSource,
		Step:    step,
		Message: fmt.Sprintf("required input file not found: %s", path),
	}
}

// NewSchema reports a required column missing from an input table.
func NewSchema(step, table, column string) *RunError {
	return &RunError{
		Kind:    KindSchema,
		Step:    step,
		Message: fmt.Sprintf("table %s is missing required column %q", table, column),
	}
}

// NewInvalidRange reports a start date after the end date.
func NewInvalidRange(step string, start, end time.Time) *RunError {
	return &RunError{
		Kind: KindInvalidRange,
		Step: step,
		Message: fmt.Sprintf("start date %s is after end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02")),
	}
}

// NewExecution wraps an arbitrary failure with step context.
func NewExecution(step string, cause error) *RunError {
	return &RunError{
		Kind:    KindExecution,
		Step:    step,
		Message: "step execution failed",
		Cause:   cause,
	}
}

// KindOf returns the kind of err, or KindExecution for unclassified errors.
func KindOf(err error) Kind {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Kind
	}
	return KindExecution
}

// IsMissingSource reports whether err is a missing-source error.
func IsMissingSource(err error) bool {
	return KindOf(err) == KindMissingSource
}

// IsSchema reports whether err is a schema error.
func IsSchema(err error) bool {
	return KindOf(err) == KindSchema
}

// IsInvalidRange reports whether err is an invalid-range error.
func IsInvalidRange(err error) bool {
	return KindOf(err) == KindInvalidRange
}
