package metrics

import (
	"math"

	"github.com/san-kum/keplerlab/internal/dynamo"
)

// EnergyDrift tracks the largest relative departure from the first observed
// energy. Systems that are not dynamo.Hamiltonian report zero.
type EnergyDrift struct {
	sys      dynamo.System
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(sys dynamo.System) *EnergyDrift {
	return &EnergyDrift{sys: sys}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	h, ok := e.sys.(dynamo.Hamiltonian)
	if !ok {
		return
	}

	energy := h.Energy(x)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

type angularMomentum interface {
	AngularMomentum(x dynamo.State) float64
}

// MomentumDrift is EnergyDrift for the angular momentum of a central-force
// system.
type MomentumDrift struct {
	sys      angularMomentum
	initial  float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift(sys dynamo.System) *MomentumDrift {
	m, _ := sys.(angularMomentum)
	return &MomentumDrift{sys: m}
}

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(x dynamo.State, t float64) {
	if m.sys == nil {
		return
	}
	h := m.sys.AngularMomentum(x)
	if m.samples == 0 {
		m.initial = h
	}
	m.samples++
	if m.initial != 0 {
		m.maxDrift = math.Max(m.maxDrift, math.Abs(h-m.initial)/math.Abs(m.initial))
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}
