package kepler

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Elements describes a planar two-body orbit.
//
// SemiMajorAxis is the semi-major axis for circles and ellipses (a > 0). For
// hyperbolas its magnitude is used, so both sign conventions are accepted. For
// parabolas, whose semi-major axis is infinite, it holds the periapsis distance q.
//
// Solver drives every time-based query; its zero value uses the package defaults.
type Elements struct {
	SemiMajorAxis       float64 `json:"semi_major_axis"`
	Eccentricity        float64 `json:"eccentricity"`
	ArgumentOfPeriapsis float64 `json:"argument_of_periapsis"`
	Mu                  float64 `json:"mu"`

	Solver Solver `json:"-"`
}

// Validate checks the element invariants: μ > 0, e >= 0, a != 0, all finite, and
// a > 0 for every conic except the hyperbola.
func (el Elements) Validate() error {
	switch {
	case !finite(el.Mu) || el.Mu <= 0:
		return domainErr("elements", "mu", el.Mu, "must be positive")
	case !finite(el.ArgumentOfPeriapsis):
		return domainErr("elements", "omega", el.ArgumentOfPeriapsis, "must be finite")
	case !finite(el.SemiMajorAxis) || el.SemiMajorAxis == 0:
		return domainErr("elements", "a", el.SemiMajorAxis, "must be finite and non-zero")
	}
	c := Classify(el.Eccentricity)
	if c == Unknown {
		return domainErr("elements", "e", el.Eccentricity, "must be finite and non-negative")
	}
	if c != Hyperbola && el.SemiMajorAxis < 0 {
		return domainErr("elements", "a", el.SemiMajorAxis, "must be positive for "+c.String()+" orbits")
	}
	return nil
}

func (el Elements) Conic() Conic { return Classify(el.Eccentricity) }

// axis is the positive length scale of the conic: a, |a| or q.
func (el Elements) axis() float64 { return math.Abs(el.SemiMajorAxis) }

func (el Elements) SemiMinorAxis() (float64, error) {
	return SemiMinorAxis(el.Eccentricity, el.SemiMajorAxis)
}

func (el Elements) LinearEccentricity() float64 {
	return LinearEccentricity(el.Eccentricity, el.SemiMajorAxis)
}

func (el Elements) FocusPoint() r2.Vec {
	return FocusPoint(el.Eccentricity, el.SemiMajorAxis, el.ArgumentOfPeriapsis)
}

// Periapsis returns the closest approach to the focus.
func (el Elements) Periapsis() float64 {
	switch el.Conic() {
	case Parabola:
		return el.axis()
	case Hyperbola:
		return el.axis() * (el.Eccentricity - 1)
	default:
		return el.axis() * (1 - el.Eccentricity)
	}
}

// Apoapsis returns the farthest distance from the focus; +Inf for open orbits.
func (el Elements) Apoapsis() float64 {
	if !el.Conic().Closed() {
		return math.Inf(1)
	}
	return el.axis() * (1 + el.Eccentricity)
}

func (el Elements) SemiLatusRectum() float64 {
	switch el.Conic() {
	case Parabola:
		return 2 * el.axis()
	case Hyperbola:
		return el.axis() * (el.Eccentricity*el.Eccentricity - 1)
	default:
		return el.axis() * (1 - el.Eccentricity*el.Eccentricity)
	}
}

// SpecificEnergy is -μ/2a for bound orbits, 0 for the parabola and +μ/2|a| for
// hyperbolas.
func (el Elements) SpecificEnergy() float64 {
	switch el.Conic() {
	case Parabola:
		return 0
	case Hyperbola:
		return el.Mu / (2 * el.axis())
	default:
		return -el.Mu / (2 * el.axis())
	}
}

// SpeedAt returns the vis-viva speed at distance r from the focus.
func (el Elements) SpeedAt(r float64) (float64, error) {
	if !finite(r) || r <= 0 {
		return 0, domainErr("vis-viva", "r", r, "must be positive")
	}
	v2 := 2 * (el.SpecificEnergy() + el.Mu/r)
	if v2 < 0 {
		return 0, domainErr("vis-viva", "r", r, "distance lies outside the orbit")
	}
	return math.Sqrt(v2), nil
}

// MeanMotion returns the rate of the mean anomaly. Parabolas use the Barker
// normalization sqrt(μ/2q³).
func (el Elements) MeanMotion() (float64, error) {
	if err := el.Validate(); err != nil {
		return 0, err
	}
	L := el.axis()
	if el.Conic() == Parabola {
		return math.Sqrt(el.Mu / (2 * L * L * L)), nil
	}
	return math.Sqrt(el.Mu / (L * L * L)), nil
}

// Period is only defined for bound orbits.
func (el Elements) Period() (float64, error) {
	if err := el.Validate(); err != nil {
		return 0, err
	}
	if !el.Conic().Closed() {
		return 0, domainErr("period", "e", el.Eccentricity, "open orbits have no period")
	}
	return Period(el.axis(), el.Mu)
}

// MeanAnomalyAt returns M = n·t, t measured from periapsis passage.
func (el Elements) MeanAnomalyAt(t float64) (float64, error) {
	n, err := el.MeanMotion()
	if err != nil {
		return 0, err
	}
	if !finite(t) {
		return 0, domainErr("mean anomaly", "t", t, "time must be finite")
	}
	return n * t, nil
}

// EccentricAnomalyAt solves for the conic's auxiliary anomaly at time t.
func (el Elements) EccentricAnomalyAt(t float64) (Solution, error) {
	M, err := el.MeanAnomalyAt(t)
	if err != nil {
		return Solution{}, err
	}
	return el.Solver.Solve(M, el.Eccentricity)
}

// TrueAnomalyAt returns ν at time t. An unconverged solve yields the best
// estimate together with a *ConvergenceError.
func (el Elements) TrueAnomalyAt(t float64) (float64, error) {
	sol, err := el.EccentricAnomalyAt(t)
	if err != nil {
		return 0, err
	}
	nu, err := TrueAnomalyFromAnomaly(sol.Anomaly, el.Eccentricity)
	if err != nil {
		return 0, err
	}
	return nu, sol.Err()
}

func (el Elements) DistanceAt(t float64) (float64, error) {
	sv, err := el.StateAt(t)
	return sv.Distance(), err
}

func (el Elements) VelocityAt(t float64) (r2.Vec, error) {
	sv, err := el.StateAt(t)
	return sv.Velocity, err
}

// StateAt returns the focus-relative state vector at time t, rotated by ω. An
// unconverged solve yields the best-estimate state with a *ConvergenceError.
func (el Elements) StateAt(t float64) (StateVector, error) {
	sol, err := el.EccentricAnomalyAt(t)
	if err != nil {
		return StateVector{}, err
	}
	sv, err := el.StateFromAnomaly(sol.Anomaly)
	if err != nil {
		return StateVector{}, err
	}
	return sv, sol.Err()
}

// StateFromAnomaly returns the state vector for the conic's auxiliary anomaly:
// eccentric anomaly E, hyperbolic anomaly H or parabolic anomaly D.
func (el Elements) StateFromAnomaly(E float64) (StateVector, error) {
	if err := el.Validate(); err != nil {
		return StateVector{}, err
	}
	if !finite(E) {
		return StateVector{}, domainErr("state", "E", E, "anomaly must be finite")
	}

	var sv StateVector
	switch el.Conic() {
	case Circle, Ellipse:
		return HeliocentricPositionVelocity(E, math.Max(el.Eccentricity, 0), el.axis(), el.ArgumentOfPeriapsis, el.Mu)
	case Parabola:
		sv = parabolicState(E, el.axis(), el.Mu)
	case Hyperbola:
		sv = hyperbolicState(E, el.Eccentricity, el.axis(), el.Mu)
	}

	sv.Position = rotate(sv.Position, el.ArgumentOfPeriapsis)
	sv.Velocity = rotate(sv.Velocity, el.ArgumentOfPeriapsis)
	if !finiteVec(sv.Position, sv.Velocity) {
		return StateVector{}, domainErr("state", "E", E, "non-finite state vector")
	}
	return sv, nil
}

// TimeSincePeriapsis returns the time needed to travel from periapsis to true
// anomaly nu. Negative anomalies give negative times.
func (el Elements) TimeSincePeriapsis(nu float64) (float64, error) {
	n, err := el.MeanMotion()
	if err != nil {
		return 0, err
	}
	E, err := EccentricAnomalyFromTrue(nu, el.Eccentricity)
	if err != nil {
		return 0, err
	}
	M, err := MeanAnomalyFromEccentric(E, el.Eccentricity)
	if err != nil {
		return 0, err
	}
	return M / n, nil
}

// EccentricAnomalyAtPosition recovers the auxiliary anomaly of a focus-relative
// world position by undoing the ω rotation and converting its true anomaly.
func (el Elements) EccentricAnomalyAtPosition(p r2.Vec) (float64, error) {
	if err := el.Validate(); err != nil {
		return 0, err
	}
	if !finiteVec(p) {
		return 0, domainErr("eccentric anomaly", "p", math.NaN(), "position must be finite")
	}
	local := rotate(p, -el.ArgumentOfPeriapsis)
	nu := math.Atan2(local.Y, local.X)
	return EccentricAnomalyFromTrue(nu, el.Eccentricity)
}
