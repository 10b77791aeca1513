package sim

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	kitlog "github.com/go-kit/kit/log"

	"github.com/san-kum/keplerlab/internal/dynamo"
	"github.com/san-kum/keplerlab/internal/integrators"
	"github.com/san-kum/keplerlab/internal/kepler"
	"github.com/san-kum/keplerlab/internal/metrics"
	"github.com/san-kum/keplerlab/internal/physics"
)

type decay struct{}

func (decay) StateDim() int { return 1 }
func (decay) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-x[0]}
}

type blowUp struct{}

func (blowUp) StateDim() int { return 1 }
func (blowUp) Derive(x dynamo.State, t float64) dynamo.State {
	if t > 0.25 {
		return dynamo.State{math.Inf(1)}
	}
	return dynamo.State{0}
}

type counter struct{ n int }

func (c *counter) Name() string                      { return "count" }
func (c *counter) Observe(x dynamo.State, t float64) { c.n++ }
func (c *counter) Value() float64                    { return float64(c.n) }
func (c *counter) Reset()                            { c.n = 0 }

func TestSimulatorRun(t *testing.T) {
	s := New(decay{}, integrators.NewEuler(), nil)

	cfg := dynamo.Config{Dt: 0.1, Duration: 1.0}
	result, err := s.Run(context.Background(), dynamo.State{1}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}

	want := math.Pow(0.9, 10)
	if got := result.Final()[0]; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected final state %.6f, got %.6f", want, got)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(decay{}, integrators.NewEuler(), nil)

	tests := []struct {
		name string
		x0   dynamo.State
		cfg  dynamo.Config
		want error
	}{
		{"zero dt", dynamo.State{1}, dynamo.Config{Dt: 0, Duration: 1}, dynamo.ErrInvalidConfig},
		{"negative duration", dynamo.State{1}, dynamo.Config{Dt: 0.1, Duration: -1}, dynamo.ErrInvalidConfig},
		{"adaptive without tolerance", dynamo.State{1}, dynamo.Config{Dt: 0.1, Duration: 1, Adaptive: true}, dynamo.ErrInvalidConfig},
		{"wrong dimension", dynamo.State{1, 2}, dynamo.Config{Dt: 0.1, Duration: 1}, dynamo.ErrDimensionMismatch},
		{"nan start", dynamo.State{math.NaN()}, dynamo.Config{Dt: 0.1, Duration: 1}, dynamo.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.x0, tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSimulatorRecordEvery(t *testing.T) {
	s := New(decay{}, integrators.NewRK4(), nil)
	c := &counter{}
	s.AddMetric(c)

	cfg := dynamo.Config{Dt: 0.1, Duration: 1.1, RecordEvery: 4}
	result, err := s.Run(context.Background(), dynamo.State{1}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// steps 4 and 8, plus the initial and the final state
	if len(result.States) != 4 {
		t.Errorf("expected 4 recorded states, got %d", len(result.States))
	}
	if result.StepsTaken != 11 {
		t.Errorf("expected 11 steps, got %d", result.StepsTaken)
	}
	if result.Metrics["count"] != 12 {
		t.Errorf("expected metrics to see every state, got %v", result.Metrics["count"])
	}
}

func TestSimulatorStopsOnInvalidState(t *testing.T) {
	var logs bytes.Buffer
	s := New(blowUp{}, integrators.NewEuler(), kitlog.NewLogfmtLogger(&logs))

	cfg := dynamo.Config{Dt: 0.1, Duration: 1, ValidateState: true}
	result, err := s.Run(context.Background(), dynamo.State{1}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}

	var simErr *dynamo.SimulationError
	if !errors.As(result.Errors[0], &simErr) || !errors.Is(simErr, dynamo.ErrInvalidState) {
		t.Fatalf("expected SimulationError wrapping ErrInvalidState, got %v", result.Errors[0])
	}
	if result.StepsTaken >= 10 {
		t.Errorf("expected the run to stop early, took %d steps", result.StepsTaken)
	}
	if !strings.Contains(logs.String(), "level=critical") {
		t.Errorf("expected a critical log line, got %q", logs.String())
	}
}

func TestAdaptiveStopsOnNonFiniteStage(t *testing.T) {
	for _, name := range []string{"rk45", "rk4"} {
		t.Run(name, func(t *testing.T) {
			integ, _ := integrators.ByName(name)
			s := New(blowUp{}, integ, nil)

			cfg := dynamo.Config{Dt: 0.1, Duration: 1, Adaptive: true, Tolerance: 1e-8, MinDt: 1e-6, ValidateState: true}
			result, err := s.Run(context.Background(), dynamo.State{1}, cfg)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if len(result.Errors) != 1 || !errors.Is(result.Errors[0], dynamo.ErrInvalidState) {
				t.Fatalf("expected one invalid-state error, got %v", result.Errors)
			}

			cfg.ValidateState = false
			cfg.MinDt = 0
			result, err = s.Run(context.Background(), dynamo.State{1}, cfg)
			if err != nil {
				t.Fatalf("unvalidated run failed: %v", err)
			}
			if got := result.Times[len(result.Times)-1]; math.Abs(got-1) > 1e-9 {
				t.Errorf("expected the unvalidated run to reach t=1, stopped at %v", got)
			}
		})
	}
}

func TestSimulatorCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(decay{}, integrators.NewEuler(), nil)
	result, err := s.Run(ctx, dynamo.State{1}, dynamo.Config{Dt: 0.1, Duration: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || len(result.States) != 1 {
		t.Errorf("expected the partial result with the initial state")
	}
}

func TestTwoBodyMatchesClosedForm(t *testing.T) {
	el := kepler.Elements{SemiMajorAxis: 10, Eccentricity: 0.5, ArgumentOfPeriapsis: 0.6, Mu: 100}
	period, err := el.Period()
	if err != nil {
		t.Fatal(err)
	}

	tb := physics.NewTwoBody(el.Mu)
	x0, err := physics.InitialState(el, 0)
	if err != nil {
		t.Fatal(err)
	}

	s := New(tb, integrators.NewRK4(), nil)
	residual := metrics.NewKeplerResidual(el, 0)
	s.AddMetric(residual)
	s.AddMetric(metrics.NewEnergyDrift(tb))

	cfg := dynamo.Config{Dt: period / 4000, Duration: period, RecordEvery: 100, ValidateState: true}
	result, err := s.Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if r := result.Metrics["kepler_residual"]; r > 1e-4 {
		t.Errorf("RK4 strayed %e from the closed-form orbit", r)
	}
	if d := result.Metrics["energy_drift"]; d > 1e-6 {
		t.Errorf("energy drift too large: %e", d)
	}
	if d := result.Final().Sub(x0).Norm(); d > 1e-3 {
		t.Errorf("orbit did not close after one period: %e", d)
	}
}

func TestAdaptiveRun(t *testing.T) {
	el := kepler.Elements{SemiMajorAxis: 1, Eccentricity: 0.9, Mu: 1}
	period, _ := el.Period()
	tb := physics.NewTwoBody(el.Mu)
	x0, _ := physics.InitialState(el, 0)

	for _, name := range []string{"rk45", "rk4"} {
		t.Run(name, func(t *testing.T) {
			integ, _ := integrators.ByName(name)
			s := New(tb, integ, nil)
			residual := metrics.NewKeplerResidual(el, 0)
			s.AddMetric(residual)

			cfg := dynamo.Config{Dt: 1e-3, Duration: period, Adaptive: true, Tolerance: 1e-10, MinDt: 1e-9, MaxDt: 0.05}
			result, err := s.Run(context.Background(), x0, cfg)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if got := result.Times[len(result.Times)-1]; math.Abs(got-period) > 1e-9 {
				t.Errorf("expected to stop at the period %v, stopped at %v", period, got)
			}
			if residual.Value() > 1e-3 {
				t.Errorf("adaptive run strayed %e from the closed form", residual.Value())
			}
		})
	}
}

func TestCompare(t *testing.T) {
	el := kepler.Elements{SemiMajorAxis: 1, Eccentricity: 0.3, Mu: 1}
	period, _ := el.Period()
	tb := physics.NewTwoBody(el.Mu)
	x0, _ := physics.InitialState(el, 0)

	names := []string{"euler", "rk4", "verlet"}
	runs := make([]Run, len(names))
	for i, name := range names {
		integ, _ := integrators.ByName(name)
		runs[i] = Run{Integrator: integ, Metrics: []dynamo.Metric{metrics.NewKeplerResidual(el, 0)}}
	}

	cfg := dynamo.Config{Dt: period / 2000, Duration: period}
	results, err := Compare(context.Background(), tb, x0, cfg, runs, nil)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	euler := results[0].Metrics["kepler_residual"]
	rk4 := results[1].Metrics["kepler_residual"]
	if !(rk4 < euler) {
		t.Errorf("expected rk4 (%e) to beat euler (%e)", rk4, euler)
	}
}

func TestCompareFailsFast(t *testing.T) {
	runs := []Run{{Integrator: integrators.NewEuler()}, {Integrator: integrators.NewRK4()}}
	_, err := Compare(context.Background(), decay{}, dynamo.State{1}, dynamo.Config{Dt: -1, Duration: 1}, runs, nil)
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
