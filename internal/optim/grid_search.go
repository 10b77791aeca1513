// Package optim searches parameter grids for the cheapest run that meets a
// requirement.
package optim

import (
	"context"
	"errors"
	"math"
)

// ErrInfeasible is returned when every grid point was rejected.
var ErrInfeasible = errors.New("optim: no feasible grid point")

// Objective scores one grid point; lower is better. Returning +Inf marks the
// point infeasible, and an error aborts the search.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates the full Cartesian product of the ranges in order and
// returns the best point. Ties keep the earlier point.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, errors.New("optim: one range per parameter")
	}
	s := searcher{objective: objective, best: math.Inf(1)}
	if err := s.recurse(ctx, g, 0, map[string]float64{}); err != nil {
		return nil, 0, err
	}
	if s.bestParams == nil {
		return nil, 0, ErrInfeasible
	}
	return s.bestParams, s.best, nil
}

type searcher struct {
	objective  Objective
	best       float64
	bestParams map[string]float64
}

func (s *searcher) recurse(ctx context.Context, g *GridSearch, depth int, current map[string]float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		val, err := s.objective(ctx, current)
		if err != nil {
			return err
		}
		if val < s.best {
			s.best = val
			s.bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				s.bestParams[k] = v
			}
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val
		if err := s.recurse(ctx, g, depth+1, next); err != nil {
			return err
		}
	}
	return nil
}
