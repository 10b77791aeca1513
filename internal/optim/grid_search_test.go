package optim

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{{-1, 0, 1, 2}, {0, 3}})
	calls := 0
	best, val, err := g.Search(context.Background(), func(ctx context.Context, p map[string]float64) (float64, error) {
		calls++
		return (p["x"]-1)*(p["x"]-1) + p["y"], nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 8 {
		t.Errorf("expected 8 evaluations, got %d", calls)
	}
	if best["x"] != 1 || best["y"] != 0 || val != 0 {
		t.Errorf("expected x=1 y=0 at 0, got %v at %v", best, val)
	}
}

func TestGridSearchInfeasible(t *testing.T) {
	g := NewGridSearch([]string{"dt"}, [][]float64{{0.1, 0.2}})
	_, _, err := g.Search(context.Background(), func(ctx context.Context, p map[string]float64) (float64, error) {
		return math.Inf(1), nil
	})
	if !errors.Is(err, ErrInfeasible) {
		t.Errorf("expected ErrInfeasible, got %v", err)
	}
}

func TestGridSearchPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	g := NewGridSearch([]string{"dt"}, [][]float64{{0.1, 0.2}})
	_, _, err := g.Search(context.Background(), func(ctx context.Context, p map[string]float64) (float64, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := g.Search(ctx, func(ctx context.Context, p map[string]float64) (float64, error) { return 0, nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	if _, _, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1}}).Search(context.Background(), nil); err == nil {
		t.Error("expected an error for mismatched ranges")
	}
}
