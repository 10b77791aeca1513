package integrators

import (
	"math"

	"github.com/san-kum/keplerlab/internal/dynamo"
)

// Dormand-Prince 5(4) tableau. Row i of dpA holds the coefficients for stage i+1.
var (
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	// fifth-order weights equal the last row of dpA (first same as last)
	dpB = [7]float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0}
	// fourth-order embedded weights
	dpBHat = [7]float64{5179.0 / 57600, 0, 7571.0 / 16695, 393.0 / 640, -92097.0 / 339200, 187.0 / 2100, 1.0 / 40}
)

// RK45 is the Dormand-Prince embedded pair. Used with a fixed step it behaves
// as a fifth-order method; StepAdaptive also returns the next step size, which
// shrinks through periapsis passages on eccentric orbits.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{safety: 0.9, minScale: 0.2, maxScale: 5.0}
}

func (r *RK45) Name() string { return "rk45" }

func (r *RK45) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	out, _, _ := r.StepAdaptive(sys, x, t, dt, 1e-9)
	return out
}

// StepAdaptive takes one step of size dt and proposes the next step size from
// the embedded error estimate. accepted is false when the estimate exceeded tol;
// the caller should retry from x with the proposal.
func (r *RK45) StepAdaptive(sys dynamo.System, x dynamo.State, t, dt, tol float64) (out dynamo.State, next float64, accepted bool) {
	n := len(x)
	var k [7]dynamo.State
	stage := make(dynamo.State, n)

	k[0] = sys.Derive(x, t)
	for s := 1; s < 7; s++ {
		copy(stage, x)
		for j := 0; j < s; j++ {
			if a := dpA[s][j]; a != 0 {
				for i := range stage {
					stage[i] += dt * a * k[j][i]
				}
			}
		}
		k[s] = sys.Derive(stage, t+dpC[s]*dt)
	}

	// stage holds the fifth-order solution after the last row.
	out = stage.Clone()

	errMax := 0.0
	for i := 0; i < n; i++ {
		est := 0.0
		for s := 0; s < 7; s++ {
			est += (dpB[s] - dpBHat[s]) * k[s][i]
		}
		scale := math.Abs(x[i]) + math.Abs(dt*k[0][i]) + 1e-12
		errMax = math.Max(errMax, math.Abs(dt*est)/scale)
	}

	ratio := errMax / tol
	var factor float64
	switch {
	case ratio == 0:
		factor = r.maxScale
	case ratio > 1:
		factor = math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25))
	default:
		factor = math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2))
	}
	return out, dt * factor, ratio <= 1
}
