package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/barfea/internal/dynamo"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (s *simpleDynamics) StateDim() int   { return 2 }
func (s *simpleDynamics) ControlDim() int { return 0 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x0 := dynamo.State{1.0, 0.0}
	u := dynamo.Control{}
	dt := 0.01
	steps := 100

	x := x0
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, u, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestTableauConsistency(t *testing.T) {
	tableaus := map[string]Tableau{
		"euler":    EulerTableau,
		"midpoint": MidpointTableau,
		"heun":     HeunTableau,
		"rk4":      RK4Tableau,
		"dopri":    DormandPrinceTableau,
	}
	for name, tab := range tableaus {
		t.Run(name, func(t *testing.T) {
			if len(tab.A) != tab.Stages() || len(tab.C) != tab.Stages() {
				t.Fatalf("ragged tableau: %d rows, %d weights, %d nodes", len(tab.A), len(tab.B), len(tab.C))
			}
			sum := 0.0
			for _, b := range tab.B {
				sum += b
			}
			if math.Abs(sum-1) > 1e-14 {
				t.Errorf("weights sum to %g", sum)
			}
			for i, row := range tab.A {
				if len(row) > i {
					t.Errorf("row %d is not explicit", i)
				}
				rowSum := 0.0
				for _, a := range row {
					rowSum += a
				}
				if math.Abs(rowSum-tab.C[i]) > 1e-14 {
					t.Errorf("row %d sums to %g, node is %g", i, rowSum, tab.C[i])
				}
			}
		})
	}
}

// halving dt should cut the global error by 2^order
func TestConvergenceOrder(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
		order float64
	}{
		{"euler", NewEuler(), 1},
		{"midpoint", NewMidpoint(), 2},
		{"heun", NewHeun(), 2},
		{"rk4", NewRK4(), 4},
		{"rk45", NewRK45(), 5},
	}

	dyn := &simpleDynamics{}
	globalError := func(integ dynamo.Integrator, steps int) float64 {
		dt := 1.0 / float64(steps)
		x := dynamo.State{1, 0}
		for i := 0; i < steps; i++ {
			x = integ.Step(dyn, x, nil, float64(i)*dt, dt)
		}
		return math.Hypot(x[0]-math.Cos(1), x[1]+math.Sin(1))
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coarse := globalError(tt.integ, 20)
			fine := globalError(tt.integ, 40)
			got := math.Log2(coarse / fine)
			if math.Abs(got-tt.order) > 0.3 {
				t.Errorf("expected order %.0f, measured %.2f", tt.order, got)
			}
		})
	}
}
