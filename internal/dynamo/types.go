package dynamo

import "math"

// State is a point in a system's state space.
type State []float64

// Control is the input a Controller hands to System.Derive.
type Control []float64

func (s State) Clone() State {
	return append(State(nil), s...)
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Norm is the Euclidean length of s.
func (s State) Norm() float64 {
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// AddScaled returns s + h*v. Components of s beyond len(v) are copied.
func (s State) AddScaled(v State, h float64) State {
	out := s.Clone()
	for i := range min(len(s), len(v)) {
		out[i] += h * v[i]
	}
	return out
}

// Sub returns s - v with the same convention as AddScaled.
func (s State) Sub(v State) State {
	return s.AddScaled(v, -1)
}

// System is an ODE dx/dt = Derive(x, u, t). A StateDim of 0 accepts
// states of any length.
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Hamiltonian systems have a conserved energy; Simulator.Run reports its
// relative drift.
type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, u Control, t, dt float64) State
}

// AdaptiveIntegrator estimates its own local error. StepAdaptive returns the
// accepted state and a proposed next step, or ErrStepRejected with the size
// to retry at.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, u Control, t, dt, tol float64) (State, float64, error)
}

type Controller interface {
	Compute(x State, t float64) Control
}

// Config controls one Simulator run. Tolerance, MinDt and MaxDt are only
// read when Adaptive is set.
type Config struct {
	Dt       float64
	Duration float64

	Adaptive  bool
	Tolerance float64
	MinDt     float64
	MaxDt     float64

	// ValidateState stops the run at the first non-finite state.
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10,
		Tolerance:     1e-6,
		MinDt:         1e-8,
		MaxDt:         0.1,
		ValidateState: true,
	}
}

// Result is a sampled trajectory: States[i] at Times[i], with Controls[i]
// held over the step that follows.
type Result struct {
	States      []State
	Controls    []Control
	Times       []float64
	EnergyDrift float64
	StepsTaken  int
}

// Final returns the last recorded state.
func (r *Result) Final() State {
	return r.States[len(r.States)-1]
}
