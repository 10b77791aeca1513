package kepler

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		e    float64
		want Conic
	}{
		{0.0, Circle},
		{0.5, Ellipse},
		{1.0, Parabola},
		{1.5, Hyperbola},
		{EccentricityTolerance / 2, Circle},
		{-EccentricityTolerance / 2, Circle},
		{1 - EccentricityTolerance/2, Parabola},
		{1 + EccentricityTolerance/2, Parabola},
		{0.999, Ellipse},
		{-0.1, Unknown},
		{math.NaN(), Unknown},
		{math.Inf(1), Unknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.e); got != tt.want {
			t.Errorf("Classify(%g) = %s, want %s", tt.e, got, tt.want)
		}
	}
}

func TestClassifyStrict(t *testing.T) {
	if c, err := ClassifyStrict(1.0); err != nil || c != Parabola {
		t.Errorf("expected exact parabola without error, got %s, %v", c, err)
	}

	c, err := ClassifyStrict(1 + EccentricityTolerance/4)
	if c != Parabola {
		t.Errorf("expected parabola, got %s", c)
	}
	var dge *DegenerateGeometryError
	if !errors.As(err, &dge) {
		t.Fatalf("expected DegenerateGeometryError, got %v", err)
	}
	if dge.Boundary != Parabola {
		t.Errorf("expected parabola boundary, got %s", dge.Boundary)
	}
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Error("expected error to wrap ErrDegenerateGeometry")
	}

	if _, err := ClassifyStrict(-2); !errors.Is(err, ErrDomain) {
		t.Errorf("expected domain error for negative eccentricity, got %v", err)
	}
}

func TestConicClosed(t *testing.T) {
	if !Circle.Closed() || !Ellipse.Closed() {
		t.Error("circle and ellipse should be closed")
	}
	if Parabola.Closed() || Hyperbola.Closed() || Unknown.Closed() {
		t.Error("open conics should not be closed")
	}
}

func TestSemiMinorAxis(t *testing.T) {
	b, err := SemiMinorAxis(0, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != 7.5 {
		t.Errorf("circular orbit: expected b == a, got %v", b)
	}

	b, err = SemiMinorAxis(0.6, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !scalar.EqualWithinAbs(b, 8, 1e-12) {
		t.Errorf("expected b=8, got %v", b)
	}

	for _, e := range []float64{1, 1.5, math.NaN()} {
		_, err := SemiMinorAxis(e, 10)
		var de *DomainError
		if !errors.As(err, &de) {
			t.Errorf("e=%g: expected DomainError, got %v", e, err)
		}
	}
}

func TestFocusPoint(t *testing.T) {
	f := FocusPoint(0, 10, 1.2)
	if f.X != 0 || f.Y != 0 {
		t.Errorf("circular orbit focus should be the zero vector, got %v", f)
	}

	f = FocusPoint(0.5, 10, math.Pi/2)
	if !scalar.EqualWithinAbs(f.X, 5, 1e-12) || !scalar.EqualWithinAbs(f.Y, 0, 1e-12) {
		t.Errorf("expected (5, 0), got %v", f)
	}

	f = FocusPoint(0.5, 10, 0)
	if f.X != 0 || f.Y != 5 {
		t.Errorf("expected (0, 5), got %v", f)
	}
}

func TestPeriodAndMeanMotion(t *testing.T) {
	p, err := Period(1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !scalar.EqualWithinAbs(p, 2*math.Pi, 1e-12) {
		t.Errorf("expected period 2π, got %v", p)
	}

	n, err := MeanMotion(4, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !scalar.EqualWithinAbs(n, math.Sqrt(16.0/64.0), 1e-12) {
		t.Errorf("expected n=0.5, got %v", n)
	}

	tests := []struct {
		name  string
		a, mu float64
	}{
		{"zero mu", 1, 0},
		{"negative mu", 1, -1},
		{"zero a", 0, 1},
		{"negative a", -1, 1},
		{"NaN a", math.NaN(), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MeanMotion(tt.a, tt.mu); !errors.Is(err, ErrDomain) {
				t.Errorf("expected domain error, got %v", err)
			}
			if _, err := Period(tt.a, tt.mu); !errors.Is(err, ErrDomain) {
				t.Errorf("expected domain error from Period, got %v", err)
			}
		})
	}
}

func TestSynchronousRadius(t *testing.T) {
	// Geostationary radius for Earth, km.
	r, err := SynchronousRadius(398600.4418, 86164.0905)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !scalar.EqualWithinAbs(r, 42164.17, 0.1) {
		t.Errorf("expected ~42164.17 km, got %v", r)
	}

	if _, err := SynchronousRadius(0, 1); !errors.Is(err, ErrDomain) {
		t.Errorf("expected domain error, got %v", err)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); !scalar.EqualWithinAbs(got, tt.want, 1e-12) {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
