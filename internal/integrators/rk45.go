package integrators

import (
	"math"

	"github.com/san-kum/barfea/internal/dynamo"
)

// DormandPrinceTableau is the 5(4) pair. The last stage is evaluated at the
// fifth-order solution, so it doubles as the embedded estimate's extra stage.
var DormandPrinceTableau = Tableau{
	A: [][]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	},
	B: []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
	C: []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
}

// dopriError is the fifth-order weights minus the fourth-order ones.
var dopriError = []float64{
	35.0/384 - 5179.0/57600,
	0,
	500.0/1113 - 7571.0/16695,
	125.0/192 - 393.0/640,
	-2187.0/6784 + 92097.0/339200,
	11.0/84 - 187.0/2100,
	-1.0 / 40,
}

// RK45 is the Dormand-Prince 5(4) pair with an embedded error estimate.
type RK45 struct {
	rk       *ExplicitRK
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		rk:       NewExplicitRK(DormandPrinceTableau),
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Step takes one fifth-order step of size dt regardless of the error estimate.
func (r *RK45) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	newX, _ := r.step(dyn, x, u, t, dt)
	return newX
}

// StepAdaptive returns the new state and the next step size. When the
// estimated error exceeds tol the step is rejected: the state is nil, the
// error is dynamo.ErrStepRejected and the returned size is the retry size.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt, tol float64) (dynamo.State, float64, error) {
	xNew, errMax := r.step(dyn, x, u, t, dt)
	errRatio := errMax / tol

	if errRatio > 1 {
		scale := math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
		return nil, dt * scale, dynamo.ErrStepRejected
	}
	if errRatio == 0 {
		return xNew, dt * r.maxScale, nil
	}
	scale := math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	return xNew, dt * scale, nil
}

// step returns the fifth-order solution and the largest relative component
// of the embedded error estimate.
func (r *RK45) step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) (dynamo.State, float64) {
	r.rk.stages(dyn, x, u, t, dt)
	xNew := r.rk.combine(x, dt, DormandPrinceTableau.B)

	k := r.rk.k
	errMax := 0.0
	for i := range x {
		errEst := 0.0
		for s, e := range dopriError {
			errEst += e * k[s][i]
		}
		errEst *= dt
		scale := math.Abs(x[i]) + math.Abs(dt*k[0][i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}
	return xNew, errMax
}
