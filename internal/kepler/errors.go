package kepler

import (
	"errors"
	"fmt"
)

// Sentinel errors for kernel operations.
var (
	// ErrDomain indicates an invalid element combination or an input outside the
	// range a function supports.
	ErrDomain = errors.New("kepler: domain error")

	// ErrNotConverged indicates the iterative solver hit its iteration cap.
	ErrNotConverged = errors.New("kepler: solver did not converge")

	// ErrDegenerateGeometry indicates an eccentricity inside a classification
	// tolerance band.
	ErrDegenerateGeometry = errors.New("kepler: degenerate conic geometry")
)

// DomainError reports which operation rejected which input.
type DomainError struct {
	Op     string
	Param  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("kepler: %s: %s=%g: %s", e.Op, e.Param, e.Value, e.Reason)
}

func (e *DomainError) Unwrap() error { return ErrDomain }

func domainErr(op, param string, value float64, reason string) error {
	return &DomainError{Op: op, Param: param, Value: value, Reason: reason}
}

// ConvergenceError carries the best estimate of a solve that ran out of iterations.
type ConvergenceError struct {
	MeanAnomaly  float64
	Eccentricity float64
	Estimate     float64
	Iterations   int
	Residual     float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("kepler: no convergence after %d iterations (M=%g e=%g estimate=%g residual=%.3e)",
		e.Iterations, e.MeanAnomaly, e.Eccentricity, e.Estimate, e.Residual)
}

func (e *ConvergenceError) Unwrap() error { return ErrNotConverged }

// DegenerateGeometryError reports an eccentricity that was snapped onto a conic
// boundary by the classification tolerance.
type DegenerateGeometryError struct {
	Eccentricity float64
	Boundary     Conic
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("kepler: eccentricity %g is within tolerance of the %s boundary", e.Eccentricity, e.Boundary)
}

func (e *DegenerateGeometryError) Unwrap() error { return ErrDegenerateGeometry }
