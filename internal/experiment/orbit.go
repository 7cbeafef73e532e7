package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/barfea/internal/dynamo"
	"github.com/san-kum/barfea/internal/physics"
)

type OrbitConfig struct {
	Mu         float64 // km^3/s^2
	Radius     float64 // km
	Periods    float64
	Dt         float64 // s
	Integrator string
	Adaptive   bool
	Tolerance  float64
}

func DefaultOrbitConfig() OrbitConfig {
	return OrbitConfig{
		Mu:         physics.EarthMu,
		Radius:     7000,
		Periods:    1,
		Dt:         10,
		Integrator: "rk4",
		Tolerance:  1e-9,
	}
}

// OrbitOutcome is a propagated circular orbit. SemiMajor and Eccentricity
// are osculating elements of the final state; a perfect propagator returns
// Radius and 0.
type OrbitOutcome struct {
	Config       OrbitConfig
	Period       float64
	Result       *dynamo.Result
	SemiMajor    float64
	Eccentricity float64
}

// Orbit propagates a circular orbit for cfg.Periods revolutions. On
// cancellation the partial trajectory is returned with the error.
func Orbit(ctx context.Context, cfg OrbitConfig) (*OrbitOutcome, error) {
	if !(cfg.Periods > 0) {
		return nil, fmt.Errorf("%w: periods must be positive", dynamo.ErrParameterBounds)
	}
	if !(cfg.Mu > 0) {
		return nil, fmt.Errorf("%w: mu must be positive", dynamo.ErrParameterBounds)
	}
	integ, err := NewRegistry().GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	body := physics.NewTwoBody(cfg.Mu)
	x0, err := body.CircularState(cfg.Radius)
	if err != nil {
		return nil, err
	}
	period := body.Period(cfg.Radius)

	simCfg := dynamo.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Periods * period,
		Tolerance:     cfg.Tolerance,
		MinDt:         cfg.Dt * 1e-6,
		MaxDt:         cfg.Dt * 100,
		Adaptive:      cfg.Adaptive,
		ValidateState: true,
	}

	result, err := dynamo.New(body, integ, nil).Run(ctx, x0, simCfg)
	if result == nil {
		return nil, err
	}
	out := &OrbitOutcome{Config: cfg, Period: period, Result: result}
	out.SemiMajor, out.Eccentricity = body.Elements(result.Final())
	return out, err
}
