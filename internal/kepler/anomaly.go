package kepler

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// MeanAnomaly returns M = n·t for an elliptic orbit with semi-major axis a.
func MeanAnomaly(t, a, mu float64) (float64, error) {
	n, err := MeanMotion(a, mu)
	if err != nil {
		return 0, err
	}
	if !finite(t) {
		return 0, domainErr("mean anomaly", "t", t, "time must be finite")
	}
	return n * t, nil
}

// EccentricAnomalyFromMean solves Kepler's equation for the conic selected by e.
//
// All anomaly math stays in the orbit's own frame: omega is validated but never
// added to the anomaly. It is applied once, as the final rotation of position
// and velocity.
func EccentricAnomalyFromMean(M, e, omega float64) (Solution, error) {
	if !finite(omega) {
		return Solution{}, domainErr("eccentric anomaly", "omega", omega, "argument of periapsis must be finite")
	}
	return DefaultSolver().Solve(M, e)
}

// EccentricAnomalyFromPosition returns the full-circle angle of p as seen from
// focus, measured from the +x axis.
func EccentricAnomalyFromPosition(p, focus r2.Vec) float64 {
	d := r2.Sub(p, focus)
	return math.Atan2(d.Y, d.X)
}

// TrueAnomalyFromEccentric converts an elliptic eccentric anomaly to the true
// anomaly. The result lies on the same revolution as E: E in (-π, π] maps into
// [-π, π], and each whole turn of E adds a whole turn to ν.
func TrueAnomalyFromEccentric(E, e float64) (float64, error) {
	if err := checkElliptic("true anomaly", e); err != nil {
		return 0, err
	}
	if !finite(E) {
		return 0, domainErr("true anomaly", "E", E, "eccentric anomaly must be finite")
	}
	r, k := reduceAngle(E)
	nu := 2 * math.Atan2(math.Sqrt(1+e)*math.Sin(r/2), math.Sqrt(1-e)*math.Cos(r/2))
	return nu + twoPi*k, nil
}

// TrueAnomalyFromTime composes MeanAnomaly, the solver and the true anomaly
// conversion. A *ConvergenceError comes back together with the best estimate.
func TrueAnomalyFromTime(t, e, a, omega, mu float64) (float64, error) {
	el := Elements{SemiMajorAxis: a, Eccentricity: e, ArgumentOfPeriapsis: omega, Mu: mu}
	return el.TrueAnomalyAt(t)
}

// MeanAnomalyFromEccentric inverts Kepler's equation for any conic: elliptic E,
// hyperbolic H or parabolic D depending on e.
func MeanAnomalyFromEccentric(E, e float64) (float64, error) {
	if !finite(E) {
		return 0, domainErr("mean anomaly", "E", E, "anomaly must be finite")
	}
	switch Classify(e) {
	case Circle, Ellipse:
		return E - math.Max(e, 0)*math.Sin(E), nil
	case Parabola:
		return E + E*E*E/3, nil
	case Hyperbola:
		return e*math.Sinh(E) - E, nil
	default:
		return 0, domainErr("mean anomaly", "e", e, "eccentricity must be finite and non-negative")
	}
}

// TrueAnomalyFromAnomaly converts the conic's auxiliary anomaly (E, H or D) to
// the true anomaly.
func TrueAnomalyFromAnomaly(E, e float64) (float64, error) {
	if !finite(E) {
		return 0, domainErr("true anomaly", "E", E, "anomaly must be finite")
	}
	switch Classify(e) {
	case Circle, Ellipse:
		if e <= 0 {
			return E, nil
		}
		return TrueAnomalyFromEccentric(E, e)
	case Parabola:
		return 2 * math.Atan(E), nil
	case Hyperbola:
		return 2 * math.Atan(math.Sqrt((e+1)/(e-1))*math.Tanh(E/2)), nil
	default:
		return 0, domainErr("true anomaly", "e", e, "eccentricity must be finite and non-negative")
	}
}

// EccentricAnomalyFromTrue is the inverse of TrueAnomalyFromAnomaly. Open orbits
// reject true anomalies beyond their asymptotes.
func EccentricAnomalyFromTrue(nu, e float64) (float64, error) {
	if !finite(nu) {
		return 0, domainErr("eccentric anomaly", "nu", nu, "true anomaly must be finite")
	}
	switch Classify(e) {
	case Circle, Ellipse:
		if e <= 0 {
			return nu, nil
		}
		r, k := reduceAngle(nu)
		E := 2 * math.Atan2(math.Sqrt(1-e)*math.Sin(r/2), math.Sqrt(1+e)*math.Cos(r/2))
		return E + twoPi*k, nil
	case Parabola:
		if math.Abs(nu) >= math.Pi {
			return 0, domainErr("eccentric anomaly", "nu", nu, "parabola is only defined for |nu| < pi")
		}
		return math.Tan(nu / 2), nil
	case Hyperbola:
		if math.Abs(nu) >= math.Acos(-1/e) {
			return 0, domainErr("eccentric anomaly", "nu", nu, "true anomaly lies beyond the asymptote")
		}
		return 2 * math.Atanh(math.Sqrt((e-1)/(e+1))*math.Tan(nu/2)), nil
	default:
		return 0, domainErr("eccentric anomaly", "e", e, "eccentricity must be finite and non-negative")
	}
}

func checkElliptic(op string, e float64) error {
	if !finite(e) || e < 0 || e >= 1 {
		return domainErr(op, "e", e, "requires 0 <= e < 1")
	}
	return nil
}
