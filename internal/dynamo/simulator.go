package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

const maxPrealloc = 1 << 16

type Simulator struct {
	dyn        System
	integrator Integrator
	controller Controller
}

// New returns a simulator. A nil controller applies zero control.
func New(dyn System, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
	}
}

// Run integrates from x0 over [0, cfg.Duration]. The last step is shortened
// to land on Duration. On cancellation or an invalid state the partial
// result is returned together with the error.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if dim := s.dyn.StateDim(); dim > 0 && len(x0) != dim {
		return nil, fmt.Errorf("%w: got %d values, system expects %d", ErrDimensionMismatch, len(x0), dim)
	}
	if !x0.IsValid() {
		return nil, ErrInvalidState
	}

	// capacity hint only; the ratio can be huge for tiny dt
	estimate := maxPrealloc
	if steps := cfg.Duration / cfg.Dt; steps < maxPrealloc {
		estimate = int(steps) + 1
	}
	result := &Result{
		States:   make([]State, 0, estimate+1),
		Controls: make([]Control, 0, estimate),
		Times:    make([]float64, 0, estimate+1),
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	initialEnergy := s.computeEnergy(x)

	for step := 0; cfg.Duration-t > 1e-12*cfg.Duration; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := s.control(x, t)
		h := math.Min(dt, cfg.Duration-t)

		var newX State
		used, next := h, dt
		if cfg.Adaptive {
			var err error
			newX, used, next, err = s.adaptiveStep(x, u, t, h, cfg)
			if err != nil {
				return result, &SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: err}
			}
		} else {
			newX = s.integrator.Step(s.dyn, x, u, t, h)
		}

		if cfg.ValidateState && !newX.IsValid() {
			return result, &SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
		}

		x = newX
		t += used
		dt = next
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)
	}

	finalEnergy := s.computeEnergy(x)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	return result, nil
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrParameterBounds, cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrParameterBounds, cfg.Duration)
	}
	if cfg.Duration+cfg.Dt == cfg.Duration {
		return fmt.Errorf("%w: dt %g is below the resolution of duration %g", ErrParameterBounds, cfg.Dt, cfg.Duration)
	}
	if cfg.Adaptive {
		if !(cfg.Tolerance > 0) {
			return fmt.Errorf("%w: tolerance must be positive for adaptive stepping", ErrParameterBounds)
		}
		if cfg.MinDt <= 0 || cfg.MaxDt < cfg.MinDt {
			return fmt.Errorf("%w: need 0 < min dt <= max dt", ErrParameterBounds)
		}
	}
	return nil
}

func (s *Simulator) control(x State, t float64) Control {
	if s.controller == nil {
		return make(Control, s.dyn.ControlDim())
	}
	return s.controller.Compute(x, t)
}

func (s *Simulator) computeEnergy(x State) float64 {
	if h, ok := s.dyn.(Hamiltonian); ok {
		return h.Energy(x)
	}
	return 0
}

// adaptiveStep returns the accepted state, the step actually taken and the
// proposed next step.
func (s *Simulator) adaptiveStep(x State, u Control, t, dt float64, cfg Config) (State, float64, float64, error) {
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		for {
			newX, next, err := adaptive.StepAdaptive(s.dyn, x, u, t, dt, cfg.Tolerance)
			next = math.Min(next, cfg.MaxDt)
			if err == nil {
				return newX, dt, next, nil
			}
			if !errors.Is(err, ErrStepRejected) {
				return nil, 0, 0, err
			}
			if next < cfg.MinDt {
				return nil, 0, 0, ErrStepTooSmall
			}
			dt = next
		}
	}

	// step doubling for fixed-step integrators
	for {
		x1 := s.integrator.Step(s.dyn, x, u, t, dt)
		xHalf := s.integrator.Step(s.dyn, x, u, t, dt/2)
		x2 := s.integrator.Step(s.dyn, xHalf, u, t+dt/2, dt/2)

		errEst := x1.Sub(x2).Norm()
		if errEst > cfg.Tolerance {
			if dt/2 < cfg.MinDt {
				return nil, 0, 0, ErrStepTooSmall
			}
			dt /= 2
			continue
		}

		next := dt
		if errEst < cfg.Tolerance/10 {
			next = math.Min(dt*2, cfg.MaxDt)
		}
		return x2, dt, next, nil
	}
}
