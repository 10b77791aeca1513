package dynamo

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"planar", State{1, 2, 3, 4}, true},
		{"with NaN", State{1, math.NaN()}, false},
		{"with -Inf", State{1, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Planar(t *testing.T) {
	s := Planar(r2.Vec{X: 1, Y: 2}, r2.Vec{X: -3, Y: 4})
	if len(s) != 4 {
		t.Fatalf("expected 4 components, got %d", len(s))
	}
	if s.Position() != (r2.Vec{X: 1, Y: 2}) {
		t.Errorf("Position() = %v", s.Position())
	}
	if s.Velocity() != (r2.Vec{X: -3, Y: 4}) {
		t.Errorf("Velocity() = %v", s.Velocity())
	}
}

func TestState_Arithmetic(t *testing.T) {
	a := State{1, 2, 3}
	b := State{4, 5, 6}

	sum := a.AddScaled(2, b)
	if sum[0] != 9 || sum[1] != 12 || sum[2] != 15 {
		t.Errorf("AddScaled failed: got %v", sum)
	}
	if a[0] != 1 {
		t.Error("AddScaled modified its receiver")
	}

	diff := b.Sub(a)
	if diff[0] != 3 || diff[1] != 3 || diff[2] != 3 {
		t.Errorf("Sub failed: got %v", diff)
	}

	if n := (State{3, 4}).Norm(); n != 5 {
		t.Errorf("Norm = %v, want 5", n)
	}

	c := a.Clone()
	c[0] = 100
	if a[0] == 100 {
		t.Error("Clone shares storage")
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 3, Time: 0.3, Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("expected SimulationError to unwrap to ErrInvalidState")
	}
	if err.Error() == "" {
		t.Error("expected a message")
	}
}

func TestResultFinal(t *testing.T) {
	var r Result
	if r.Final() != nil {
		t.Error("expected nil final state for an empty result")
	}
	r.States = []State{{1}, {2}}
	if r.Final()[0] != 2 {
		t.Errorf("expected last state, got %v", r.Final())
	}
}
