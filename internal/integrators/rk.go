package integrators

import "github.com/san-kum/barfea/internal/dynamo"

// Tableau holds the Butcher coefficients of an explicit Runge-Kutta method.
// Stage i is evaluated at t + C[i]*dt and x + dt*sum_j A[i][j]*k_j for j < i;
// the step combines the stages with weights B.
type Tableau struct {
	A [][]float64
	B []float64
	C []float64
}

// Stages returns the number of derivative evaluations per step.
func (tab Tableau) Stages() int { return len(tab.B) }

var (
	EulerTableau = Tableau{
		A: [][]float64{{}},
		B: []float64{1},
		C: []float64{0},
	}
	MidpointTableau = Tableau{
		A: [][]float64{{}, {0.5}},
		B: []float64{0, 1},
		C: []float64{0, 0.5},
	}
	HeunTableau = Tableau{
		A: [][]float64{{}, {1}},
		B: []float64{0.5, 0.5},
		C: []float64{0, 1},
	}
	RK4Tableau = Tableau{
		A: [][]float64{{}, {0.5}, {0, 0.5}, {0, 0, 1}},
		B: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
		C: []float64{0, 0.5, 0.5, 1},
	}
)

// ExplicitRK steps any explicit tableau. Stage buffers are reused, so one
// value must not be shared between goroutines.
type ExplicitRK struct {
	tab     Tableau
	k       []dynamo.State
	scratch dynamo.State
}

func NewExplicitRK(tab Tableau) *ExplicitRK {
	return &ExplicitRK{tab: tab, k: make([]dynamo.State, tab.Stages())}
}

// NewEuler is the explicit first-order method, kept as a baseline.
func NewEuler() *ExplicitRK { return NewExplicitRK(EulerTableau) }

func NewMidpoint() *ExplicitRK { return NewExplicitRK(MidpointTableau) }

func NewHeun() *ExplicitRK { return NewExplicitRK(HeunTableau) }

// NewRK4 is the classic fourth-order Runge-Kutta method.
func NewRK4() *ExplicitRK { return NewExplicitRK(RK4Tableau) }

func (r *ExplicitRK) ensureScratch(n int) {
	if len(r.scratch) == n {
		return
	}
	r.scratch = make(dynamo.State, n)
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
}

// stages fills r.k with the stage derivatives of a step from (t, x).
func (r *ExplicitRK) stages(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) {
	n := len(x)
	r.ensureScratch(n)

	for s, row := range r.tab.A {
		copy(r.scratch, x)
		for j, a := range row {
			if a == 0 {
				continue
			}
			for i := 0; i < n; i++ {
				r.scratch[i] += dt * a * r.k[j][i]
			}
		}
		copy(r.k[s], dyn.Derive(r.scratch, u, t+r.tab.C[s]*dt))
	}
}

// combine returns x + dt*sum_s w[s]*k_s as a new state.
func (r *ExplicitRK) combine(x dynamo.State, dt float64, w []float64) dynamo.State {
	result := x.Clone()
	for s, ws := range w {
		if ws == 0 {
			continue
		}
		for i := range result {
			result[i] += dt * ws * r.k[s][i]
		}
	}
	return result
}

func (r *ExplicitRK) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	r.stages(dyn, x, u, t, dt)
	return r.combine(x, dt, r.tab.B)
}
