// Package kepler computes planar two-body Keplerian orbits.
//
// The kernel converts between the three parameterizations of orbital phase,
// solves Kepler's equation, and derives focus-relative state vectors for every
// conic section:
//
//   - [Classify] maps eccentricity onto [Circle], [Ellipse], [Parabola] or [Hyperbola]
//   - [Solver] solves Kepler's equation, dispatching on the conic
//   - [TrueAnomalyFromEccentric] and friends convert between anomalies
//   - [HeliocentricPositionVelocity] and [Elements.StateAt] produce state vectors
//
// # Frames
//
// Anomalies are always measured in the orbit's own frame, periapsis on +x. The
// argument of periapsis is applied once, as the final rotation of position and
// velocity:
//
//	el := kepler.Elements{SemiMajorAxis: 10, Eccentricity: 0.5, Mu: 100}
//	sv, err := el.StateAt(t)
//
// # Errors
//
// Invalid inputs return a [*DomainError]. The solver never fails on iteration
// count: an unconverged [Solution] carries its best estimate and reports a
// [*ConvergenceError] from [Solution.Err]. Every function is free of hidden
// state and safe for concurrent use.
package kepler
