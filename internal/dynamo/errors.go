package dynamo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState marks a state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds marks a configuration or model parameter out of range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrStepRejected is returned by StepAdaptive when the error estimate
	// exceeds the tolerance.
	ErrStepRejected = errors.New("dynamo: adaptive step rejected")

	// ErrStepTooSmall means adaptive stepping needed a step below Config.MinDt.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrDimensionMismatch means the initial state does not fit the system.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError reports where a run stopped. State is the last good state.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error { return e.Wrapped }
