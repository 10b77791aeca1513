package integrators

import "github.com/san-kum/keplerlab/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme. Scratch buffers are
// reused between steps, so a value must not be shared across goroutines.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

// stage fills the scratch buffer with x + h·k and evaluates the derivative there.
func (r *RK4) stage(sys dynamo.System, dst, x, k dynamo.State, t, h float64) {
	for i := range x {
		r.scratch[i] = x[i] + h*k[i]
	}
	copy(dst, sys.Derive(r.scratch, t))
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	half := 0.5 * dt
	copy(r.k1, sys.Derive(x, t))
	r.stage(sys, r.k2, x, r.k1, t+half, half)
	r.stage(sys, r.k3, x, r.k2, t+half, half)
	r.stage(sys, r.k4, x, r.k3, t+dt, dt)

	out := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		out[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return out
}
