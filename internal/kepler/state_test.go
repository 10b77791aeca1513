package kepler

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestCircularSpeed(t *testing.T) {
	for _, E := range []float64{0, 0.5, 2, -1.3, 7} {
		sv, err := HeliocentricPositionVelocity(E, 0, 1, 0, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(sv.Speed()-1) > 1e-12 {
			t.Errorf("E=%g: expected unit speed, got %v", E, sv.Speed())
		}
		if math.Abs(sv.Distance()-1) > 1e-12 {
			t.Errorf("E=%g: expected unit radius, got %v", E, sv.Distance())
		}
		if dot := r2.Dot(sv.Position, sv.Velocity); math.Abs(dot) > 1e-12 {
			t.Errorf("E=%g: velocity not tangent, dot=%v", E, dot)
		}
	}
}

func TestHeliocentricPosition(t *testing.T) {
	p, err := HeliocentricPosition(0, 0.5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(p.X-5) > 1e-12 || math.Abs(p.Y) > 1e-12 {
		t.Errorf("expected periapsis at (5, 0), got %v", p)
	}

	p, err = HeliocentricPosition(math.Pi, 0.5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(p.X+15) > 1e-9 || math.Abs(p.Y) > 1e-9 {
		t.Errorf("expected apoapsis at (-15, 0), got %v", p)
	}

	if _, err := HeliocentricPosition(1, 1.5, 10); !errors.Is(err, ErrDomain) {
		t.Errorf("expected domain error, got %v", err)
	}
}

func TestHeliocentricVelocityValidates(t *testing.T) {
	tests := []struct {
		name        string
		E, e, a, mu float64
	}{
		{"open orbit", 1, 1.2, 10, 1},
		{"negative axis", 1, 0.3, -10, 1},
		{"zero mu", 1, 0.3, 10, 0},
		{"nan anomaly", math.NaN(), 0.3, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := HeliocentricVelocity(tt.E, tt.e, tt.a, tt.mu); !errors.Is(err, ErrDomain) {
				t.Errorf("expected domain error, got %v", err)
			}
		})
	}
}

func TestVisViva(t *testing.T) {
	tests := []struct {
		name string
		el   Elements
	}{
		{"ellipse", Elements{SemiMajorAxis: 10, Eccentricity: 0.5, Mu: 100}},
		{"eccentric ellipse", Elements{SemiMajorAxis: 3, Eccentricity: 0.9, ArgumentOfPeriapsis: 1, Mu: 2}},
		{"parabola", Elements{SemiMajorAxis: 4, Eccentricity: 1, Mu: 9}},
		{"hyperbola", Elements{SemiMajorAxis: -5, Eccentricity: 1.4, ArgumentOfPeriapsis: -2, Mu: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, E := range []float64{-1.1, -0.2, 0, 0.6, 1.4} {
				sv, err := tt.el.StateFromAnomaly(E)
				if err != nil {
					t.Fatalf("E=%g: unexpected error: %v", E, err)
				}
				want, err := tt.el.SpeedAt(sv.Distance())
				if err != nil {
					t.Fatalf("E=%g: unexpected error: %v", E, err)
				}
				if math.Abs(sv.Speed()-want) > 1e-9*want {
					t.Errorf("E=%g: expected speed %v, got %v", E, want, sv.Speed())
				}
			}
		})
	}
}

func TestAngularMomentumConserved(t *testing.T) {
	el := Elements{SemiMajorAxis: 8, Eccentricity: 0.6, ArgumentOfPeriapsis: 0.7, Mu: 30}
	want := math.Sqrt(el.Mu * el.SemiLatusRectum())
	for _, E := range []float64{0, 1, 2, 3, 4, 5} {
		sv, err := el.StateFromAnomaly(E)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		h := r2.Cross(sv.Position, sv.Velocity)
		if math.Abs(h-want) > 1e-9*want {
			t.Errorf("E=%g: expected h=%v, got %v", E, want, h)
		}
	}
}

func TestQuarterPeriod(t *testing.T) {
	a, e, mu := 10.0, 0.5, 100.0
	T, err := Period(a, mu)
	if err != nil {
		t.Fatal(err)
	}
	M, err := MeanAnomaly(T/4, a, mu)
	if err != nil {
		t.Fatal(err)
	}

	sol, err := EccentricAnomalyFromMean(M, e, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Anomaly < math.Pi/2 || sol.Anomaly > 2*math.Pi/3 {
		t.Errorf("expected E in [π/2, 2π/3], got %v", sol.Anomaly)
	}

	sv, err := HeliocentricPositionVelocity(sol.Anomaly, e, a, 0, mu)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r := sv.Distance(); r < 10 || r > 15 {
		t.Errorf("expected r in [10, 15], got %v", r)
	}
	if sv.Position.Y <= 0 {
		t.Errorf("expected the body above the major axis, got %v", sv.Position)
	}
}

func TestOmegaRotation(t *testing.T) {
	base := Elements{SemiMajorAxis: 6, Eccentricity: 0.3, Mu: 12}
	turned := base
	turned.ArgumentOfPeriapsis = math.Pi / 2

	for _, E := range []float64{0, 0.8, 2.2} {
		a, err := base.StateFromAnomaly(E)
		if err != nil {
			t.Fatal(err)
		}
		b, err := turned.StateFromAnomaly(E)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(a.Distance()-b.Distance()) > 1e-12 || math.Abs(a.Speed()-b.Speed()) > 1e-12 {
			t.Errorf("E=%g: rotation changed magnitudes", E)
		}
		// A quarter turn maps (x, y) to (-y, x).
		if math.Abs(b.Position.X+a.Position.Y) > 1e-9 || math.Abs(b.Position.Y-a.Position.X) > 1e-9 {
			t.Errorf("E=%g: expected %v rotated a quarter turn, got %v", E, a.Position, b.Position)
		}
	}
}

func TestStateAt(t *testing.T) {
	el := Elements{SemiMajorAxis: 10, Eccentricity: 0.5, ArgumentOfPeriapsis: 0.4, Mu: 100}
	sv, err := el.StateAt(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sv.Distance()-el.Periapsis()) > 1e-12 {
		t.Errorf("expected periapsis distance %v, got %v", el.Periapsis(), sv.Distance())
	}

	r, err := el.DistanceAt(0)
	if err != nil || r != sv.Distance() {
		t.Errorf("DistanceAt disagrees with StateAt: %v, %v", r, err)
	}
	v, err := el.VelocityAt(0)
	if err != nil || v != sv.Velocity {
		t.Errorf("VelocityAt disagrees with StateAt: %v, %v", v, err)
	}
}

func TestStateAtUsesElementSolver(t *testing.T) {
	el := Elements{SemiMajorAxis: 10, Eccentricity: 0.9, Mu: 100, Solver: Solver{MaxIterations: 1}}
	period, err := el.Period()
	if err != nil {
		t.Fatal(err)
	}
	_, err = el.StateAt(period / 4)
	var ce *ConvergenceError
	if !errors.As(err, &ce) || ce.Iterations != 1 {
		t.Fatalf("expected a one-iteration *ConvergenceError, got %v", err)
	}

	el.Solver = Solver{}
	if _, err := el.StateAt(period / 4); err != nil {
		t.Errorf("zero solver should fall back to defaults: %v", err)
	}
}

func TestEccentricAnomalyAtPosition(t *testing.T) {
	orbits := []Elements{
		{SemiMajorAxis: 10, Eccentricity: 0.5, ArgumentOfPeriapsis: 1.1, Mu: 100},
		{SemiMajorAxis: 3, Eccentricity: 1, ArgumentOfPeriapsis: -0.4, Mu: 1},
		{SemiMajorAxis: 2, Eccentricity: 2.5, ArgumentOfPeriapsis: 3, Mu: 7},
	}
	for _, el := range orbits {
		for _, E := range []float64{-1, 0.25, 0.9} {
			sv, err := el.StateFromAnomaly(E)
			if err != nil {
				t.Fatal(err)
			}
			got, err := el.EccentricAnomalyAtPosition(sv.Position)
			if err != nil {
				t.Fatalf("%v: unexpected error: %v", el.Conic(), err)
			}
			if math.Abs(got-E) > 1e-9 {
				t.Errorf("%v: expected %v, got %v", el.Conic(), E, got)
			}
		}
	}
}
