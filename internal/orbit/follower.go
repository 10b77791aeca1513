package orbit

import (
	"errors"
	"math"

	kitlog "github.com/go-kit/kit/log"

	"github.com/san-kum/keplerlab/internal/kepler"
)

// Follower is the per-frame cursor that moves a body along a Path. Time is
// measured from periapsis passage.
type Follower struct {
	path     *Path
	t        float64
	revision uint64
	logger   kitlog.Logger
}

func NewFollower(path *Path, logger kitlog.Logger) *Follower {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Follower{
		path:     path,
		revision: path.Revision(),
		logger:   kitlog.With(logger, "subsys", "follow"),
	}
}

func (f *Follower) Time() float64 { return f.t }

// Seek moves the cursor to an absolute time since periapsis.
func (f *Follower) Seek(t float64) { f.t = t }

// Advance moves the cursor forward by dt and returns the body's state. On a
// closed orbit the clock wraps at the period to keep M small. A solver that
// runs out of iterations still yields its best-estimate state alongside the
// *kepler.ConvergenceError.
func (f *Follower) Advance(dt float64) (kepler.StateVector, error) {
	el, rev := f.path.snapshot()
	if rev != f.revision {
		f.logger.Log("level", "info", "revision", rev, "t", f.t, "message", "elements changed")
		f.revision = rev
	}

	f.t += dt
	if el.Conic().Closed() {
		if T, err := el.Period(); err == nil {
			f.t = math.Mod(f.t, T)
			if f.t < 0 {
				f.t += T
			}
		}
	}

	sv, err := el.StateAt(f.t)
	var ce *kepler.ConvergenceError
	if errors.As(err, &ce) {
		f.logger.Log("level", "warning", "t", f.t, "iterations", ce.Iterations, "residual", ce.Residual)
	}
	return sv, err
}
