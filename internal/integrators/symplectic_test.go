package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/barfea/internal/dynamo"
)

// harmonicOscillator is simpleDynamics with its conserved energy.
type harmonicOscillator struct{ simpleDynamics }

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func TestSymplecticEnergyBounded(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
	}{
		{"verlet", NewVerlet()},
		{"leapfrog", NewLeapfrog()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dyn := &harmonicOscillator{}
			x := dynamo.State{1.0, 0.0}
			dt := 0.02

			worst := 0.0
			for i := 0; i < 20000; i++ {
				x = tt.integ.Step(dyn, x, nil, float64(i)*dt, dt)
				worst = math.Max(worst, math.Abs(dyn.Energy(x)-0.5))
			}
			// symplectic methods oscillate around the true energy with
			// amplitude O(dt^2) instead of drifting
			if worst/0.5 > 1e-3 {
				t.Errorf("energy error grew to %e", worst/0.5)
			}
		})
	}
}

func TestEulerDrifts(t *testing.T) {
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}
	dt := 0.05

	e := NewEuler()
	for i := 0; i < 200; i++ {
		x = e.Step(dyn, x, nil, float64(i)*dt, dt)
	}
	expected := 0.5 * math.Pow(1+dt*dt, 200)
	if math.Abs(dyn.Energy(x)-expected) > 1e-9 {
		t.Errorf("expected energy %.8f, got %.8f", expected, dyn.Energy(x))
	}
}

func TestVerletMatchesLeapfrogOnLinearForce(t *testing.T) {
	dyn := &harmonicOscillator{}
	a := dynamo.State{0.3, -0.7}
	b := a.Clone()
	v, l := NewVerlet(), NewLeapfrog()

	for i := 0; i < 100; i++ {
		a = v.Step(dyn, a, nil, 0, 0.01)
		b = l.Step(dyn, b, nil, 0, 0.01)
	}
	if a.Sub(b).Norm() > 1e-12 {
		t.Errorf("velocity verlet and kick-drift-kick should agree: %v vs %v", a, b)
	}
}
