package integrators

import "github.com/san-kum/keplerlab/internal/dynamo"

// Verlet is velocity Verlet. It expects positions in the first half of the
// state and velocities in the second, and reads accelerations from the second
// half of the derivative. Being symplectic, it keeps orbital energy bounded
// over long runs where RK4 slowly drifts.
type Verlet struct {
	scratch dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(v.scratch) != n {
		v.scratch = make(dynamo.State, n)
	}

	acc := sys.Derive(x, t)
	out := make(dynamo.State, n)
	for i := 0; i < half; i++ {
		out[i] = x[i] + dt*x[half+i] + 0.5*dt*dt*acc[half+i]
		v.scratch[i] = out[i]
		v.scratch[half+i] = x[half+i]
	}

	accNew := sys.Derive(v.scratch, t+dt)
	for i := 0; i < half; i++ {
		out[half+i] = x[half+i] + 0.5*dt*(acc[half+i]+accNew[half+i])
	}
	return out
}

// Leapfrog is the kick-drift-kick form of the same second-order scheme.
type Leapfrog struct {
	scratch dynamo.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(l.scratch) != n {
		l.scratch = make(dynamo.State, n)
	}

	halfDt := 0.5 * dt
	acc := sys.Derive(x, t)
	out := make(dynamo.State, n)

	// kick, drift
	for i := 0; i < half; i++ {
		vHalf := x[half+i] + halfDt*acc[half+i]
		out[i] = x[i] + dt*vHalf
		l.scratch[i] = out[i]
		l.scratch[half+i] = vHalf
	}

	// kick
	accNew := sys.Derive(l.scratch, t+dt)
	for i := 0; i < half; i++ {
		out[half+i] = l.scratch[half+i] + halfDt*accNew[half+i]
	}
	return out
}
