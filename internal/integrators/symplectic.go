package integrators

import "github.com/san-kum/barfea/internal/dynamo"

// The symplectic integrators expect states laid out as
// [positions..., velocities...] with accelerations in the velocity half of
// Derive and forces that do not depend on velocity.

// kick advances the velocity half of dst by h times the acceleration half of dx.
func kick(dst, dx dynamo.State, h float64) {
	half := len(dst) / 2
	for i := half; i < len(dst); i++ {
		dst[i] += h * dx[i]
	}
}

// drift advances the position half of dst by h times its velocity half.
func drift(dst dynamo.State, h float64) {
	half := len(dst) / 2
	for i := 0; i < half; i++ {
		dst[i] += h * dst[half+i]
	}
}

// Verlet is velocity Verlet: positions move with the start velocity plus
// half the start acceleration, velocities with the mean acceleration.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	half := len(x) / 2
	a0 := dyn.Derive(x, u, t)

	result := x.Clone()
	for i := 0; i < half; i++ {
		result[i] += dt*x[half+i] + 0.5*dt*dt*a0[half+i]
	}
	a1 := dyn.Derive(result, u, t+dt)

	kick(result, a0, dt/2)
	kick(result, a1, dt/2)
	return result
}

// Leapfrog is kick-drift-kick. For velocity-independent forces it follows
// the same trajectory as Verlet up to rounding.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	result := x.Clone()
	kick(result, dyn.Derive(x, u, t), dt/2)
	drift(result, dt)
	kick(result, dyn.Derive(result, u, t+dt), dt/2)
	return result
}
