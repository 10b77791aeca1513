package integrators

import "github.com/san-kum/keplerlab/internal/dynamo"

// Euler is the explicit first-order scheme. It drifts outward on every orbit
// and is kept as the baseline the other schemes are measured against.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return x.AddScaled(dt, sys.Derive(x, t))
}
