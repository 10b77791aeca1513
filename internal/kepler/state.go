package kepler

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// StateVector is a position and velocity pair, valid only for the anomaly it was
// derived from.
type StateVector struct {
	Position r2.Vec `json:"position"`
	Velocity r2.Vec `json:"velocity"`
}

func (s StateVector) Distance() float64 { return r2.Norm(s.Position) }
func (s StateVector) Speed() float64    { return r2.Norm(s.Velocity) }

// HeliocentricDistance returns r = a·(1 - e·cos E), the distance from the focus.
func HeliocentricDistance(E, e, a float64) float64 {
	return a * (1 - e*math.Cos(E))
}

// HeliocentricPosition returns r·(cos ν, sin ν) in the orbit frame, periapsis on +x.
func HeliocentricPosition(E, e, a float64) (r2.Vec, error) {
	nu, err := TrueAnomalyFromEccentric(E, e)
	if err != nil {
		return r2.Vec{}, err
	}
	r := HeliocentricDistance(E, e, a)
	p := r2.Vec{X: r * math.Cos(nu), Y: r * math.Sin(nu)}
	if !finiteVec(p) {
		return r2.Vec{}, domainErr("heliocentric position", "a", a, "non-finite position")
	}
	return p, nil
}

// HeliocentricVelocity returns sqrt(μ·a)/r · (-sin E, sqrt(1-e²)·cos E), in the
// orbit frame aligned with the major axis. Rotate by ω for world coordinates.
func HeliocentricVelocity(E, e, a, mu float64) (r2.Vec, error) {
	if err := checkEllipticState("heliocentric velocity", E, e, a, mu); err != nil {
		return r2.Vec{}, err
	}
	return ellipticVelocity(E, e, a, mu, HeliocentricDistance(E, e, a)), nil
}

// HeliocentricPositionVelocity computes position and velocity in one pass,
// sharing the distance and true anomaly, then rotates both by omega.
func HeliocentricPositionVelocity(E, e, a, omega, mu float64) (StateVector, error) {
	if err := checkEllipticState("heliocentric state", E, e, a, mu); err != nil {
		return StateVector{}, err
	}
	if !finite(omega) {
		return StateVector{}, domainErr("heliocentric state", "omega", omega, "argument of periapsis must be finite")
	}

	r := HeliocentricDistance(E, e, a)
	nu, err := TrueAnomalyFromEccentric(E, e)
	if err != nil {
		return StateVector{}, err
	}

	sv := StateVector{
		Position: rotate(r2.Vec{X: r * math.Cos(nu), Y: r * math.Sin(nu)}, omega),
		Velocity: rotate(ellipticVelocity(E, e, a, mu, r), omega),
	}
	if !finiteVec(sv.Position, sv.Velocity) {
		return StateVector{}, domainErr("heliocentric state", "E", E, "non-finite state vector")
	}
	return sv, nil
}

func ellipticVelocity(E, e, a, mu, r float64) r2.Vec {
	s := math.Sqrt(mu*a) / r
	sinE, cosE := math.Sincos(E)
	return r2.Vec{X: -s * sinE, Y: s * math.Sqrt(1-e*e) * cosE}
}

func hyperbolicState(H, e, a, mu float64) StateVector {
	sinhH, coshH := math.Sinh(H), math.Cosh(H)
	k := math.Sqrt(e*e - 1)
	r := a * (e*coshH - 1)
	s := math.Sqrt(mu*a) / r
	return StateVector{
		Position: r2.Vec{X: a * (e - coshH), Y: a * k * sinhH},
		Velocity: r2.Vec{X: -s * sinhH, Y: s * k * coshH},
	}
}

// parabolicState takes the periapsis distance q in place of a.
func parabolicState(D, q, mu float64) StateVector {
	n := math.Sqrt(mu / (2 * q * q * q))
	dD := n / (1 + D*D)
	return StateVector{
		Position: r2.Vec{X: q * (1 - D*D), Y: 2 * q * D},
		Velocity: r2.Vec{X: -2 * q * D * dD, Y: 2 * q * dD},
	}
}

func checkEllipticState(op string, E, e, a, mu float64) error {
	if err := checkElliptic(op, e); err != nil {
		return err
	}
	if !finite(E) {
		return domainErr(op, "E", E, "eccentric anomaly must be finite")
	}
	if !finite(a) || a <= 0 {
		return domainErr(op, "a", a, "must be positive")
	}
	if !finite(mu) || mu <= 0 {
		return domainErr(op, "mu", mu, "must be positive")
	}
	return nil
}
