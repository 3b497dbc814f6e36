package planservice

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the taxonomy from spec.md §4.E "Failure model".
var (
	ErrToolError             = errors.New("tool error")
	ErrSymbolError           = errors.New("symbol error")
	ErrWrongToolOutput       = errors.New("wrong tool output")
	ErrAbsentFilePath        = errors.New("absent file path")
	ErrPlanNotFound          = errors.New("plan not found")
)

// StepNotFoundError names the out-of-range step index.
type StepNotFoundError struct{ Index int }

func (e *StepNotFoundError) Error() string { return fmt.Sprintf("step not found: %d", e.Index) }
func (e *StepNotFoundError) Unwrap() error { return errStepNotFound }

var errStepNotFound = errors.New("step not found")

// InvalidStepExecutionError names the step whose execution produced an
// inconsistent result (e.g. the symbol-edit pathway replied with a mismatched
// step index).
type InvalidStepExecutionError struct{ Index int }

func (e *InvalidStepExecutionError) Error() string {
	return fmt.Sprintf("invalid step execution: %d", e.Index)
}
func (e *InvalidStepExecutionError) Unwrap() error { return errInvalidStepExecution }

var errInvalidStepExecution = errors.New("invalid step execution")
