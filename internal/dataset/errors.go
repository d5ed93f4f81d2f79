package dataset

import (
	"fmt"
	"strings"
)

// MissingColumnError indicates a required column is absent from the input table.
type MissingColumnError struct {
	Column    string
	Available []string
}

func (e *MissingColumnError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("missing column %q", e.Column)
	}
	return fmt.Sprintf("missing column %q (available: %s)", e.Column, strings.Join(e.Available, ", "))
}

// InsufficientDataError indicates the input is too small or too sparse for the analysis,
// e.g. an empty vocabulary or zero rows left after missing-value deletion.
type InsufficientDataError struct {
	Op     string
	Reason string
}

func (e *InsufficientDataError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("insufficient data: %s", e.Reason)
	}
	return fmt.Sprintf("%s: insufficient data: %s", e.Op, e.Reason)
}

// MissingTargetError indicates regression was requested without a target column.
type MissingTargetError struct{}

func (e *MissingTargetError) Error() string { return "regression requires a target column" }

// NonNumericFeatureError indicates a numeric column holds a value that does not parse as a number.
type NonNumericFeatureError struct {
	Column string
	Row    int // 1-based data row (header excluded)
	Value  string
}

func (e *NonNumericFeatureError) Error() string {
	return fmt.Sprintf("column %q is not numeric: row %d has %q", e.Column, e.Row, e.Value)
}

// ValidationError indicates an analysis parameter is out of range.
type ValidationError struct {
	Param string
	Value any
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s=%v: %s", e.Param, e.Value, e.Rule)
}

// RequirePositive returns a ValidationError unless v >= 1.
func RequirePositive(param string, v int) error {
	if v < 1 {
		return &ValidationError{Param: param, Value: v, Rule: "must be >= 1"}
	}
	return nil
}
