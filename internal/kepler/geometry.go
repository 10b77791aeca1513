package kepler

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

// EccentricityTolerance is the half-width of the band around e=0 and e=1 inside
// which Classify snaps to Circle and Parabola.
const EccentricityTolerance = 1e-9

const twoPi = 2 * math.Pi

type Conic int

const (
	Unknown Conic = iota
	Circle
	Ellipse
	Parabola
	Hyperbola
)

func (c Conic) String() string {
	switch c {
	case Circle:
		return "circle"
	case Ellipse:
		return "ellipse"
	case Parabola:
		return "parabola"
	case Hyperbola:
		return "hyperbola"
	default:
		return "unknown"
	}
}

// Closed reports whether the conic is a bound orbit.
func (c Conic) Closed() bool { return c == Circle || c == Ellipse }

// Classify maps an eccentricity onto its conic section. Values within
// EccentricityTolerance of 0 or 1 snap to Circle or Parabola so rounding noise
// cannot flip the classification. Negative or non-finite values are Unknown.
func Classify(e float64) Conic {
	switch {
	case !finite(e):
		return Unknown
	case scalar.EqualWithinAbs(e, 0, EccentricityTolerance):
		return Circle
	case e < 0:
		return Unknown
	case scalar.EqualWithinAbs(e, 1, EccentricityTolerance):
		return Parabola
	case e < 1:
		return Ellipse
	default:
		return Hyperbola
	}
}

// ClassifyStrict is Classify that also reports a DegenerateGeometryError when e
// was snapped onto a boundary rather than lying exactly on it.
func ClassifyStrict(e float64) (Conic, error) {
	c := Classify(e)
	switch c {
	case Unknown:
		return c, domainErr("classify", "e", e, "eccentricity must be finite and non-negative")
	case Circle:
		if e != 0 {
			return c, &DegenerateGeometryError{Eccentricity: e, Boundary: Circle}
		}
	case Parabola:
		if e != 1 {
			return c, &DegenerateGeometryError{Eccentricity: e, Boundary: Parabola}
		}
	}
	return c, nil
}

// SemiMinorAxis returns b = sqrt(a² - (e·a)²). It is only defined for circles
// and ellipses.
func SemiMinorAxis(e, a float64) (float64, error) {
	if !finite(e, a) {
		return 0, domainErr("semi-minor axis", "e", e, "inputs must be finite")
	}
	if e == 0 {
		return math.Abs(a), nil
	}
	c := LinearEccentricity(e, a)
	if math.Abs(c) >= math.Abs(a) {
		return 0, domainErr("semi-minor axis", "e", e, "only defined for circles and ellipses")
	}
	return math.Sqrt(a*a - c*c), nil
}

func LinearEccentricity(e, a float64) float64 {
	return e * a
}

// FocusPoint returns the displacement from the orbit's geometric center to its
// focus, c·(sin ω, cos ω). The angle is measured from the +y axis, matching the
// host's screen convention.
func FocusPoint(e, a, omega float64) r2.Vec {
	c := LinearEccentricity(e, a)
	return r2.Vec{X: c * math.Sin(omega), Y: c * math.Cos(omega)}
}

// Period returns 2π·sqrt(a³/μ).
func Period(a, mu float64) (float64, error) {
	n, err := MeanMotion(a, mu)
	if err != nil {
		return 0, err
	}
	return twoPi / n, nil
}

// MeanMotion returns n = sqrt(μ/a³).
func MeanMotion(a, mu float64) (float64, error) {
	if !finite(mu) || mu <= 0 {
		return 0, domainErr("mean motion", "mu", mu, "must be positive")
	}
	if !finite(a) || a <= 0 {
		return 0, domainErr("mean motion", "a", a, "must be positive")
	}
	return math.Sqrt(mu / (a * a * a)), nil
}

// SynchronousRadius returns the circular orbit radius whose period equals the
// attractor's rotational period.
func SynchronousRadius(mu, rotationalPeriod float64) (float64, error) {
	if !finite(mu) || mu <= 0 {
		return 0, domainErr("synchronous radius", "mu", mu, "must be positive")
	}
	if !finite(rotationalPeriod) || rotationalPeriod <= 0 {
		return 0, domainErr("synchronous radius", "period", rotationalPeriod, "must be positive")
	}
	return math.Cbrt(mu * rotationalPeriod * rotationalPeriod / (4 * math.Pi * math.Pi)), nil
}

// NormalizeAngle wraps an angle into [0, 2π).
func NormalizeAngle(angle float64) float64 {
	wrapped := math.Mod(angle, twoPi)
	if wrapped < 0 {
		wrapped += twoPi
	}
	return wrapped
}

// reduceAngle splits x into a remainder in (-π, π] and the whole revolutions
// removed, so that x == r + 2π·k up to rounding.
func reduceAngle(x float64) (r, k float64) {
	k = math.Ceil((x - math.Pi) / twoPi)
	return x - twoPi*k, k
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func finiteVec(vs ...r2.Vec) bool {
	for _, v := range vs {
		if !finite(v.X, v.Y) {
			return false
		}
	}
	return true
}

func rotate(v r2.Vec, angle float64) r2.Vec {
	if angle == 0 {
		return v
	}
	return r2.Rotate(v, angle, r2.Vec{})
}
