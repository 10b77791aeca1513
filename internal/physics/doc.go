// Package physics provides the force model used to propagate orbits
// numerically.
//
// [TwoBody] implements [dynamo.System] and [dynamo.Hamiltonian], so the
// simulator can track energy drift while integrating:
//
//	tb := physics.NewTwoBody(el.Mu)
//	x0, _ := physics.InitialState(el, 0)
//	energy := tb.Energy(x0) // equals el.SpecificEnergy()
package physics
