// Package dynamo integrates ordinary differential equations dx/dt = f(x, u, t).
//
// A [System] supplies the derivative, an [Integrator] advances one step and
// a [Simulator] runs the loop: fixed or adaptive steps, an optional
// [Controller], cancellation through a context, and energy drift for
// [Hamiltonian] systems.
//
//	body := physics.NewTwoBody(physics.EarthMu)
//	x0, _ := body.CircularState(7000)
//	res, err := dynamo.New(body, integrators.NewRK4(), nil).Run(ctx, x0, dynamo.Config{
//		Dt:       10,
//		Duration: body.Period(7000),
//	})
//
// Simulators and most integrators keep scratch buffers; use one per goroutine.
package dynamo
