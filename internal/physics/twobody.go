package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/keplerlab/internal/dynamo"
	"github.com/san-kum/keplerlab/internal/kepler"
)

// TwoBody is a test particle under an inverse-square attraction towards a fixed
// focus at the origin. The state is planar: {x, y, vx, vy}.
type TwoBody struct {
	Mu float64
}

func NewTwoBody(mu float64) *TwoBody {
	return &TwoBody{Mu: mu}
}

func (tb *TwoBody) StateDim() int { return 4 }

func (tb *TwoBody) Derive(x dynamo.State, t float64) dynamo.State {
	r := math.Hypot(x[0], x[1])
	k := -tb.Mu / (r * r * r)
	return dynamo.State{x[2], x[3], k * x[0], k * x[1]}
}

// Energy returns the specific orbital energy v²/2 - μ/r.
func (tb *TwoBody) Energy(x dynamo.State) float64 {
	v := x.Velocity()
	return 0.5*r2.Norm2(v) - tb.Mu/r2.Norm(x.Position())
}

// AngularMomentum returns the z component of r × v, positive for prograde motion.
func (tb *TwoBody) AngularMomentum(x dynamo.State) float64 {
	return r2.Cross(x.Position(), x.Velocity())
}

// InitialState returns the state at time t on the orbit described by el.
func InitialState(el kepler.Elements, t float64) (dynamo.State, error) {
	sv, err := el.StateAt(t)
	if err != nil {
		return nil, err
	}
	return dynamo.Planar(sv.Position, sv.Velocity), nil
}

// OsculatingElements recovers the conic a planar state lies on. Only prograde
// states are representable; the kernel has no inclination to flip.
func (tb *TwoBody) OsculatingElements(x dynamo.State) (kepler.Elements, error) {
	if len(x) != 4 {
		return kepler.Elements{}, fmt.Errorf("physics: state of length %d: %w", len(x), dynamo.ErrDimensionMismatch)
	}
	if !x.IsValid() {
		return kepler.Elements{}, dynamo.ErrInvalidState
	}

	pos, vel := x.Position(), x.Velocity()
	r := r2.Norm(pos)
	h := r2.Cross(pos, vel)
	if r == 0 || h <= 0 {
		return kepler.Elements{}, fmt.Errorf("physics: osculating elements need prograde motion (h=%g): %w", h, kepler.ErrDomain)
	}

	// eccentricity vector ((v² - μ/r)·r - (r·v)·v) / μ points at periapsis
	ev := r2.Scale(1/tb.Mu, r2.Sub(
		r2.Scale(r2.Norm2(vel)-tb.Mu/r, pos),
		r2.Scale(r2.Dot(pos, vel), vel),
	))
	e := r2.Norm(ev)

	el := kepler.Elements{
		Eccentricity: e,
		Mu:           tb.Mu,
	}
	if kepler.Classify(e) != kepler.Circle {
		el.ArgumentOfPeriapsis = kepler.NormalizeAngle(math.Atan2(ev.Y, ev.X))
	}

	switch kepler.Classify(e) {
	case kepler.Parabola:
		el.SemiMajorAxis = h * h / (2 * tb.Mu)
	default:
		el.SemiMajorAxis = math.Abs(tb.Mu / (2 * tb.Energy(x)))
	}
	return el, nil
}
