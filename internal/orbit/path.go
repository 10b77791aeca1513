// Package orbit adapts the kepler kernel for a host that draws and animates a
// single orbit. It owns the mutable elements and every cached value derived
// from them; the kernel underneath stays stateless.
package orbit

import (
	"fmt"
	"math"
	"sync"

	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/keplerlab/internal/kepler"
)

// OpenSampleExtent bounds how far Sample follows an open orbit, as a multiple of
// the periapsis distance.
const OpenSampleExtent = 8.0

// Config holds the tunable properties of a Path.
type Config struct {
	SemiMajorAxis        float64 `yaml:"semi_major_axis" json:"semi_major_axis"`
	Eccentricity         float64 `yaml:"eccentricity" json:"eccentricity"`
	ArgumentOfPeriapsis  float64 `yaml:"argument_of_periapsis" json:"argument_of_periapsis"`
	Gravity              float64 `yaml:"gravity" json:"gravity"`
	GravityDistanceScale float64 `yaml:"gravity_distance_scale" json:"gravity_distance_scale"`

	// Solver is handed to the elements for every time-based query.
	Solver kepler.Solver `yaml:"-" json:"-"`
}

// Mu returns the gravitational parameter gravity/scale².
func (c Config) Mu() float64 {
	return c.Gravity / (c.GravityDistanceScale * c.GravityDistanceScale)
}

func (c Config) Elements() kepler.Elements {
	return kepler.Elements{
		SemiMajorAxis:       c.SemiMajorAxis,
		Eccentricity:        c.Eccentricity,
		ArgumentOfPeriapsis: c.ArgumentOfPeriapsis,
		Mu:                  c.Mu(),
		Solver:              c.Solver,
	}
}

// ControlPoint is one vertex of the host curve with its incoming handle.
type ControlPoint struct {
	Position r2.Vec
	In       r2.Vec
}

type speedMemo struct {
	revision uint64
	speed    float64
}

// Path is the host-facing orbit. Every setter bumps Revision and rebuilds the
// memoized geometry; invalid values are rejected and leave the path unchanged.
type Path struct {
	mu sync.RWMutex

	cfg      Config
	el       kepler.Elements
	revision uint64

	minor    float64
	minorErr error
	focus    r2.Vec
	curve    []ControlPoint

	speed *speedMemo

	logger kitlog.Logger
}

// NewPath validates cfg and returns a path at revision 1. A nil logger discards
// output.
func NewPath(cfg Config, logger kitlog.Logger) (*Path, error) {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	p := &Path{logger: kitlog.With(logger, "subsys", "orbit")}
	if err := p.apply(cfg, "init"); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Path) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

func (p *Path) Elements() kepler.Elements {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.el
}

func (p *Path) snapshot() (kepler.Elements, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.el, p.revision
}

// Revision increases by one on every accepted change.
func (p *Path) Revision() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.revision
}

func (p *Path) SetSemiMajorAxis(v float64) error {
	return p.update("semi_major_axis", func(c *Config) { c.SemiMajorAxis = v })
}

func (p *Path) SetEccentricity(v float64) error {
	return p.update("eccentricity", func(c *Config) { c.Eccentricity = v })
}

func (p *Path) SetArgumentOfPeriapsis(v float64) error {
	return p.update("argument_of_periapsis", func(c *Config) { c.ArgumentOfPeriapsis = v })
}

func (p *Path) SetGravity(v float64) error {
	return p.update("gravity", func(c *Config) { c.Gravity = v })
}

func (p *Path) SetGravityDistanceScale(v float64) error {
	return p.update("gravity_distance_scale", func(c *Config) { c.GravityDistanceScale = v })
}

// Set replaces every property at once, bumping the revision a single time.
func (p *Path) Set(cfg Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.apply(cfg, "all")
}

func (p *Path) update(field string, mutate func(*Config)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cfg := p.cfg
	mutate(&cfg)
	return p.apply(cfg, field)
}

// apply must be called with the write lock held, or before p is shared.
func (p *Path) apply(cfg Config, field string) error {
	if !(cfg.GravityDistanceScale > 0) || math.IsInf(cfg.GravityDistanceScale, 0) {
		err := fmt.Errorf("orbit: set %s: gravity distance scale %v: %w", field, cfg.GravityDistanceScale, kepler.ErrDomain)
		p.logger.Log("level", "warning", "field", field, "err", err)
		return err
	}
	el := cfg.Elements()
	if err := el.Validate(); err != nil {
		p.logger.Log("level", "warning", "field", field, "err", err)
		return fmt.Errorf("orbit: set %s: %w", field, err)
	}

	p.cfg = cfg
	p.el = el
	p.revision++
	p.minor, p.minorErr = el.SemiMinorAxis()
	p.focus = el.FocusPoint()
	p.curve = nil
	if p.minorErr == nil {
		p.curve = generateCurve(el.SemiMajorAxis, p.minor)
	}
	p.speed = nil

	p.logger.Log("level", "debug", "field", field, "revision", p.revision, "conic", el.Conic(), "mu", el.Mu)
	return nil
}

// SemiMinorAxis returns the memoized b. Open orbits report the kernel's domain
// error.
func (p *Path) SemiMinorAxis() (float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.minor, p.minorErr
}

func (p *Path) FocusPoint() r2.Vec {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.focus
}

// Curve returns the five-point closed curve the host follows: the four axis
// vertices, the first repeated to close the loop, each with a tangent handle.
// It is only defined for closed orbits.
func (p *Path) Curve() ([]ControlPoint, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.minorErr != nil {
		return nil, p.minorErr
	}
	out := make([]ControlPoint, len(p.curve))
	copy(out, p.curve)
	return out, nil
}

func generateCurve(a, b float64) []ControlPoint {
	return []ControlPoint{
		{Position: r2.Vec{X: b}, In: r2.Vec{Y: -a}},
		{Position: r2.Vec{Y: a}, In: r2.Vec{X: b}},
		{Position: r2.Vec{X: -b}, In: r2.Vec{Y: a}},
		{Position: r2.Vec{Y: -a}, In: r2.Vec{X: -b}},
		{Position: r2.Vec{X: b}, In: r2.Vec{Y: -a}},
	}
}

// Sample returns n focus-relative points for drawing. Closed orbits are split
// into n evenly spaced eccentric anomalies, so points bunch near apoapsis rather
// than tracking the body's speed. Open orbits are sampled on the hyperbolic or
// parabolic anomaly out to OpenSampleExtent periapsis distances.
func (p *Path) Sample(n int) ([]r2.Vec, error) {
	if n < 2 {
		return nil, fmt.Errorf("orbit: sample %d points: %w", n, kepler.ErrDomain)
	}
	el := p.Elements()

	var lo, step float64
	switch el.Conic() {
	case kepler.Circle, kepler.Ellipse:
		lo, step = 0, 2*math.Pi/float64(n)
	default:
		limit := openAnomalyLimit(el)
		lo, step = -limit, 2*limit/float64(n-1)
	}

	pts := make([]r2.Vec, n)
	for i := range pts {
		sv, err := el.StateFromAnomaly(lo + float64(i)*step)
		if err != nil {
			return nil, err
		}
		pts[i] = sv.Position
	}
	return pts, nil
}

func openAnomalyLimit(el kepler.Elements) float64 {
	q := el.Periapsis()
	rmax := OpenSampleExtent * q
	if el.Conic() == kepler.Parabola {
		return math.Sqrt(rmax/q - 1)
	}
	a := math.Abs(el.SemiMajorAxis)
	return math.Acosh((rmax/a + 1) / el.Eccentricity)
}

// Velocity returns the orbital velocity at a focus-relative position on the
// path. Circular orbits reuse the speed memoized for the current revision and
// only recompute the direction.
func (p *Path) Velocity(pos r2.Vec) (r2.Vec, error) {
	p.mu.RLock()
	el, rev, memo := p.el, p.revision, p.speed
	p.mu.RUnlock()

	if el.Conic() == kepler.Circle && r2.Norm(pos) > 0 {
		if memo == nil || memo.revision != rev {
			speed, err := el.SpeedAt(math.Abs(el.SemiMajorAxis))
			if err != nil {
				return r2.Vec{}, err
			}
			memo = &speedMemo{revision: rev, speed: speed}
			p.mu.Lock()
			if p.revision == rev {
				p.speed = memo
			}
			p.mu.Unlock()
		}
		tangent := r2.Vec{X: -pos.Y, Y: pos.X}
		return r2.Scale(memo.speed, r2.Unit(tangent)), nil
	}

	E, err := el.EccentricAnomalyAtPosition(pos)
	if err != nil {
		return r2.Vec{}, err
	}
	sv, err := el.StateFromAnomaly(E)
	if err != nil {
		return r2.Vec{}, err
	}
	return sv.Velocity, nil
}

// memoizedSpeed reports the cached circular speed for the current revision.
func (p *Path) memoizedSpeed() (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.speed == nil || p.speed.revision != p.revision {
		return 0, false
	}
	return p.speed.speed, true
}
