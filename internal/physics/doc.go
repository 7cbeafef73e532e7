// Package physics provides dynamical system models for simulation.
//
// [TwoBody] is planar Keplerian motion about a point mass. It implements
// [dynamo.System] and [dynamo.Hamiltonian], so the simulator can report
// energy drift for any integrator:
//
//	orbit := physics.NewTwoBody(physics.EarthMu)
//	x0, _ := orbit.CircularState(7000)
//	sim := dynamo.New(orbit, integrators.NewRK4(), nil)
//	result, err := sim.Run(ctx, x0, dynamo.Config{Dt: 10, Duration: orbit.Period(7000)})
//
// Units follow Mu: with [EarthMu] positions are in km, velocities in km/s
// and time in seconds.
package physics
