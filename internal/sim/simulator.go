// Package sim propagates a dynamo.System with a numerical integrator, records
// the trajectory and feeds it to metrics.
package sim

import (
	"context"
	"fmt"
	"math"

	kitlog "github.com/go-kit/kit/log"

	"github.com/san-kum/keplerlab/internal/dynamo"
)

type Simulator struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	logger     kitlog.Logger
}

// New returns a simulator. A nil logger discards output.
func New(sys dynamo.System, integrator dynamo.Integrator, logger kitlog.Logger) *Simulator {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		logger:     kitlog.With(logger, "subsys", "sim", "integrator", integrator.Name()),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 over cfg.Duration. Every accepted state, the initial
// one included, is passed to the metrics and observers; one in cfg.RecordEvery
// is kept in the result, as is the final state.
//
// A cancelled context returns the partial result with ctx.Err(). A state that
// turns NaN or Inf stops the run and is reported in Result.Errors.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	every := cfg.RecordEvery
	if every < 1 {
		every = 1
	}
	capacity := int(cfg.Duration/cfg.Dt)/every + 2
	result := &dynamo.Result{
		States:  make([]dynamo.State, 0, capacity),
		Times:   make([]float64, 0, capacity),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt
	s.observe(x, t)
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	initialEnergy, hasEnergy := s.energy(x)
	steps := int(math.Round(cfg.Duration / cfg.Dt))
	recorded := true

	s.logger.Log("level", "debug", "message", "run started", "dt", cfg.Dt, "duration", cfg.Duration, "adaptive", cfg.Adaptive)

	for i := 0; ; i++ {
		if cfg.Adaptive {
			if t >= cfg.Duration {
				break
			}
		} else if i >= steps {
			break
		}

		select {
		case <-ctx.Done():
			s.logger.Log("level", "warning", "message", "run cancelled", "step", i, "t", t)
			return result, ctx.Err()
		default:
		}

		var next dynamo.State
		taken := dt
		if cfg.Adaptive {
			taken = math.Min(dt, cfg.Duration-t)
			next, taken, dt = s.adaptiveStep(x, t, taken, cfg)
		} else {
			next = s.integrator.Step(s.sys, x, t, dt)
		}

		if cfg.ValidateState && !next.IsValid() {
			err := &dynamo.SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: dynamo.ErrInvalidState}
			result.Errors = append(result.Errors, err)
			s.logger.Log("level", "critical", "step", i, "t", t, "err", err)
			break
		}

		x = next
		t += taken
		result.StepsTaken++
		s.observe(x, t)

		recorded = result.StepsTaken%every == 0
		if recorded {
			result.States = append(result.States, x.Clone())
			result.Times = append(result.Times, t)
		}
	}

	if !recorded {
		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
	}

	if hasEnergy && initialEnergy != 0 {
		finalEnergy, _ := s.energy(x)
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Log("level", "info", "message", "run finished", "steps", result.StepsTaken, "t", t, "energy_drift", result.EnergyDrift)
	return result, nil
}

func (s *Simulator) observe(x dynamo.State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, o := range s.observers {
		o.OnStep(x, t)
	}
}

func (s *Simulator) validate(x0 dynamo.State, cfg dynamo.Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Adaptive && !(cfg.Tolerance > 0) {
		return fmt.Errorf("%w: tolerance must be positive for adaptive stepping", dynamo.ErrInvalidConfig)
	}
	if len(x0) != s.sys.StateDim() {
		return fmt.Errorf("%w: state has %d components, system wants %d", dynamo.ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}
	if !x0.IsValid() {
		return dynamo.ErrInvalidState
	}
	return nil
}

func (s *Simulator) energy(x dynamo.State) (float64, bool) {
	if h, ok := s.sys.(dynamo.Hamiltonian); ok {
		return h.Energy(x), true
	}
	return 0, false
}

// adaptiveStep returns the accepted state, the step actually taken and the
// step to try next. Integrators without an error estimate fall back to step
// doubling.
func (s *Simulator) adaptiveStep(x dynamo.State, t, dt float64, cfg dynamo.Config) (dynamo.State, float64, float64) {
	for {
		var next dynamo.State
		var proposal float64
		var ok bool

		if a, isAdaptive := s.integrator.(dynamo.AdaptiveIntegrator); isAdaptive {
			next, proposal, ok = a.StepAdaptive(s.sys, x, t, dt, cfg.Tolerance)
		} else {
			full := s.integrator.Step(s.sys, x, t, dt)
			half := s.integrator.Step(s.sys, x, t, dt/2)
			next = s.integrator.Step(s.sys, half, t+dt/2, dt/2)
			errEst := full.Sub(next).Norm()
			ok = errEst <= cfg.Tolerance
			switch {
			case !ok:
				proposal = dt / 2
			case errEst < cfg.Tolerance/10:
				proposal = dt * 2
			default:
				proposal = dt
			}
		}

		// A non-finite trial can never pass the error test; hand it back for
		// the caller's validation instead of shrinking forever.
		if math.IsNaN(proposal) || !next.IsValid() {
			return next, dt, dt
		}
		if cfg.MaxDt > 0 {
			proposal = math.Min(proposal, cfg.MaxDt)
		}
		if ok || dt <= cfg.MinDt {
			return next, dt, math.Max(proposal, cfg.MinDt)
		}
		dt = math.Max(proposal, cfg.MinDt)
	}
}
