package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/keplerlab/internal/dynamo"
	"github.com/san-kum/keplerlab/internal/kepler"
)

// KeplerResidual measures the largest distance between a propagated planar
// state and the closed-form position at the same time. Epoch is the time since
// periapsis of the propagator's t = 0.
type KeplerResidual struct {
	el    kepler.Elements
	epoch float64

	max     float64
	last    float64
	samples int
	failed  int
}

func NewKeplerResidual(el kepler.Elements, epoch float64) *KeplerResidual {
	return &KeplerResidual{el: el, epoch: epoch}
}

func (k *KeplerResidual) Name() string { return "kepler_residual" }

// Observe skips samples whose closed-form state cannot be computed; Failed
// counts them.
func (k *KeplerResidual) Observe(x dynamo.State, t float64) {
	sv, err := k.el.StateAt(k.epoch + t)
	if err != nil {
		k.failed++
		return
	}
	k.last = r2.Norm(r2.Sub(x.Position(), sv.Position))
	k.max = math.Max(k.max, k.last)
	k.samples++
}

func (k *KeplerResidual) Value() float64 { return k.max }

// Last is the residual of the most recent sample.
func (k *KeplerResidual) Last() float64 { return k.last }

func (k *KeplerResidual) Failed() int { return k.failed }

func (k *KeplerResidual) Reset() {
	k.max = 0
	k.last = 0
	k.samples = 0
	k.failed = 0
}
