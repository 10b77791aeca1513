package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// State is a flat state vector. Mechanical systems store n positions followed
// by n velocities, which is the layout the symplectic integrators rely on.
type State []float64

// Planar packs a 2D position and velocity as {x, y, vx, vy}.
func Planar(pos, vel r2.Vec) State {
	return State{pos.X, pos.Y, vel.X, vel.Y}
}

// Position returns the first two components of a planar state.
func (s State) Position() r2.Vec { return r2.Vec{X: s[0], Y: s[1]} }

// Velocity returns the last two components of a planar state.
func (s State) Velocity() r2.Vec { return r2.Vec{X: s[2], Y: s[3]} }

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// AddScaled returns s + f·d without modifying either operand.
func (s State) AddScaled(f float64, d State) State {
	out := make(State, len(s))
	for i := range s {
		out[i] = s[i] + f*d[i]
	}
	return out
}

func (s State) Sub(other State) State {
	out := make(State, len(s))
	for i := range s {
		out[i] = s[i] - other[i]
	}
	return out
}

// System is an autonomous or time-dependent ODE.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Hamiltonian systems expose a conserved energy.
type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Name() string
	Step(sys System, x State, t, dt float64) State
}

// AdaptiveIntegrator also proposes the next step size from an error estimate.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, tol float64) (next State, dtNext float64, accepted bool)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Dt       float64 `yaml:"dt" json:"dt"`
	Duration float64 `yaml:"duration" json:"duration"`
	// RecordEvery keeps one state out of every RecordEvery steps; 0 or 1 keeps all.
	RecordEvery   int     `yaml:"record_every" json:"record_every"`
	Adaptive      bool    `yaml:"adaptive" json:"adaptive"`
	Tolerance     float64 `yaml:"tolerance" json:"tolerance"`
	MinDt         float64 `yaml:"min_dt" json:"min_dt"`
	MaxDt         float64 `yaml:"max_dt" json:"max_dt"`
	ValidateState bool    `yaml:"validate_state" json:"validate_state"`
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		RecordEvery:   1,
		Tolerance:     1e-9,
		MinDt:         1e-8,
		MaxDt:         1.0,
		ValidateState: true,
	}
}

type Result struct {
	States      []State
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

// Final returns the last recorded state, or nil for an empty result.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
