// Package dynamo defines the primitives shared by the numerical propagator:
//
//   - [State]: flat state vector, positions first then velocities
//   - [System]: an ODE dX/dt = f(X, t)
//   - [Integrator]: a fixed-step numerical scheme
//   - [Metric]: a running observation over a propagation
//
// The closed-form kepler kernel never depends on this package; it exists to
// check the kernel against brute-force integration.
//
// # Example
//
//	el := kepler.Elements{SemiMajorAxis: 10, Eccentricity: 0.5, Mu: 100}
//	sys := physics.NewTwoBody(el.Mu)
//	x0, _ := physics.InitialState(el, 0)
//	result, _ := sim.New(sys, integrators.NewRK4(), nil).Run(ctx, x0, cfg)
package dynamo
