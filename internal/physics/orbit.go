package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/barfea/internal/dynamo"
)

// EarthMu is Earth's gravitational parameter in km^3/s^2.
const EarthMu = 398600.4418

// TwoBody is planar Keplerian motion about a point mass.
// State: [x, y, vx, vy], positions first so the symplectic integrators apply.
type TwoBody struct {
	Mu float64
}

func NewTwoBody(mu float64) *TwoBody {
	return &TwoBody{Mu: mu}
}

func (b *TwoBody) StateDim() int   { return 4 }
func (b *TwoBody) ControlDim() int { return 0 }

func (b *TwoBody) Derive(x dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	r := math.Hypot(x[0], x[1])
	k := -b.Mu / (r * r * r)
	return dynamo.State{x[2], x[3], k * x[0], k * x[1]}
}

// Energy is the specific orbital energy v^2/2 - mu/r.
func (b *TwoBody) Energy(x dynamo.State) float64 {
	v2 := x[2]*x[2] + x[3]*x[3]
	return 0.5*v2 - b.Mu/math.Hypot(x[0], x[1])
}

// CircularState starts a prograde circular orbit of the given radius on the x axis.
func (b *TwoBody) CircularState(radius float64) (dynamo.State, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: radius must be positive, got %g", dynamo.ErrParameterBounds, radius)
	}
	return dynamo.State{radius, 0, 0, math.Sqrt(b.Mu / radius)}, nil
}

// Period is the orbital period for semi-major axis a.
func (b *TwoBody) Period(a float64) float64 {
	return 2 * math.Pi * math.Sqrt(a*a*a/b.Mu)
}

// Elements returns the semi-major axis and eccentricity of the orbit through x.
// The semi-major axis is infinite for escape trajectories.
func (b *TwoBody) Elements(x dynamo.State) (a, e float64) {
	r := math.Hypot(x[0], x[1])
	v2 := x[2]*x[2] + x[3]*x[3]
	energy := 0.5*v2 - b.Mu/r
	if energy >= 0 {
		a = math.Inf(1)
	} else {
		a = -b.Mu / (2 * energy)
	}

	// eccentricity vector: ((v^2 - mu/r) r - (r.v) v) / mu
	rv := x[0]*x[2] + x[1]*x[3]
	ex := ((v2-b.Mu/r)*x[0] - rv*x[2]) / b.Mu
	ey := ((v2-b.Mu/r)*x[1] - rv*x[3]) / b.Mu
	return a, math.Hypot(ex, ey)
}
