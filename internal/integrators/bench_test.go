package integrators

import (
	"fmt"
	"testing"

	"github.com/san-kum/barfea/internal/dynamo"
)

// springChain is n unit masses joined by unit springs, fixed at one end.
// State is positions followed by velocities.
type springChain struct{ n int }

func (c springChain) StateDim() int   { return 2 * c.n }
func (c springChain) ControlDim() int { return 0 }

func (c springChain) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	dx := make(dynamo.State, 2*c.n)
	copy(dx, x[c.n:])
	for i := 0; i < c.n; i++ {
		left := 0.0
		if i > 0 {
			left = x[i-1]
		}
		f := left - x[i]
		if i+1 < c.n {
			f += x[i+1] - x[i]
		}
		dx[c.n+i] = f
	}
	return dx
}

func BenchmarkStep(b *testing.B) {
	methods := []struct {
		name string
		step dynamo.Integrator
	}{
		{"euler", NewEuler()},
		{"heun", NewHeun()},
		{"rk4", NewRK4()},
		{"rk45", NewRK45()},
		{"verlet", NewVerlet()},
		{"leapfrog", NewLeapfrog()},
	}
	for _, size := range []int{1, 32} {
		dyn := springChain{n: size}
		for _, m := range methods {
			b.Run(fmt.Sprintf("%s/n=%d", m.name, size), func(b *testing.B) {
				x := make(dynamo.State, 2*size)
				x[size-1] = 1
				b.ReportAllocs()
				for b.Loop() {
					x = m.step.Step(dyn, x, nil, 0, 0.01)
				}
			})
		}
	}
}
