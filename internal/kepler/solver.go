package kepler

import "math"

const (
	DefaultTolerance     = 1e-12
	DefaultMaxIterations = 50
)

// Solution is the outcome of a Kepler's-equation solve. When Converged is false
// Anomaly still holds the best estimate reached before the iteration cap.
type Solution struct {
	Anomaly    float64
	Iterations int
	Residual   float64
	Converged  bool

	mean float64
	ecc  float64
}

// Err returns a *ConvergenceError for an unconverged solution and nil otherwise.
func (s Solution) Err() error {
	if s.Converged {
		return nil
	}
	return &ConvergenceError{
		MeanAnomaly:  s.mean,
		Eccentricity: s.ecc,
		Estimate:     s.Anomaly,
		Iterations:   s.Iterations,
		Residual:     s.Residual,
	}
}

// Solver finds the anomaly that satisfies Kepler's equation for a given mean
// anomaly. A zero value uses the package defaults.
type Solver struct {
	Tolerance     float64
	MaxIterations int
}

func DefaultSolver() Solver {
	return Solver{Tolerance: DefaultTolerance, MaxIterations: DefaultMaxIterations}
}

func (s Solver) limits() (float64, int) {
	tol, maxIter := s.Tolerance, s.MaxIterations
	if !(tol > 0) {
		tol = DefaultTolerance
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	return tol, maxIter
}

// Solve dispatches on Classify(e): circles and ellipses use Elliptic, parabolas
// use Barker's closed form, hyperbolas use Hyperbolic.
func (s Solver) Solve(M, e float64) (Solution, error) {
	switch Classify(e) {
	case Circle, Ellipse:
		if e < 0 {
			e = 0
		}
		return s.Elliptic(M, e)
	case Parabola:
		return s.Parabolic(M)
	case Hyperbola:
		return s.Hyperbolic(M, e)
	default:
		return Solution{}, domainErr("solve", "e", e, "eccentricity must be finite and non-negative")
	}
}

// Elliptic solves E - e·sin(E) = M by Newton-Raphson for 0 <= e < 1.
//
// M is reduced to (-π, π] before iterating and the removed revolutions are added
// back, so the returned E satisfies the equation for the caller's M and stays on
// the same revolution. e == 0 returns E == M without iterating.
func (s Solver) Elliptic(M, e float64) (Solution, error) {
	if !finite(M) {
		return Solution{}, domainErr("elliptic solve", "M", M, "mean anomaly must be finite")
	}
	if !finite(e) || e < 0 || e >= 1 {
		return Solution{}, domainErr("elliptic solve", "e", e, "requires 0 <= e < 1")
	}
	if e == 0 {
		return Solution{Anomaly: M, Converged: true, mean: M, ecc: e}, nil
	}

	tol, maxIter := s.limits()
	m, k := reduceAngle(M)

	// Danby's starting value converges for every M once reduced.
	E := m + 0.85*e*signum(math.Sin(m))
	sol := Solution{mean: M, ecc: e}
	for sol.Iterations < maxIter {
		f := E - e*math.Sin(E) - m
		delta := f / (1 - e*math.Cos(E))
		E -= delta
		sol.Iterations++
		if math.Abs(delta) < tol {
			sol.Converged = true
			break
		}
	}

	sol.Residual = math.Abs(E - e*math.Sin(E) - m)
	sol.Anomaly = E + twoPi*k
	return sol, nil
}

// Hyperbolic solves e·sinh(H) - H = M by Newton-Raphson for e > 1.
//
// The solve runs on |M| where the function is convex, starting from
// ln(2|M|/e + 1.8), and the sign is restored afterwards. Past |M| = 1e300 the
// start is taken as ln(2|M|/e) in log space so it cannot overflow.
func (s Solver) Hyperbolic(M, e float64) (Solution, error) {
	if !finite(M) {
		return Solution{}, domainErr("hyperbolic solve", "M", M, "mean anomaly must be finite")
	}
	if !finite(e) || e <= 1 {
		return Solution{}, domainErr("hyperbolic solve", "e", e, "requires e > 1")
	}

	sol := Solution{mean: M, ecc: e}
	if M == 0 {
		sol.Converged = true
		return sol, nil
	}

	tol, maxIter := s.limits()
	m := math.Abs(M)
	var H float64
	if m < 1e300 {
		H = math.Log(2*m/e + 1.8)
	} else {
		H = math.Log(m) - math.Log(e) + math.Ln2
	}
	for sol.Iterations < maxIter {
		f := e*math.Sinh(H) - H - m
		delta := f / (e*math.Cosh(H) - 1)
		H -= delta
		sol.Iterations++
		if math.Abs(delta) < tol*math.Max(1, H) {
			sol.Converged = true
			break
		}
	}

	if !finite(H) {
		return Solution{}, domainErr("hyperbolic solve", "M", M, "hyperbolic anomaly is not finite")
	}
	H = math.Copysign(H, M)
	sol.Anomaly = H
	sol.Residual = math.Abs(e*math.Sinh(H) - H - M)
	return sol, nil
}

// Parabolic solves Barker's equation M = D + D³/3 for the parabolic anomaly
// D = tan(ν/2) in closed form.
func (s Solver) Parabolic(M float64) (Solution, error) {
	if !finite(M) {
		return Solution{}, domainErr("parabolic solve", "M", M, "mean anomaly must be finite")
	}
	D := 2 * math.Sinh(math.Asinh(1.5*M)/3)
	return Solution{
		Anomaly:   D,
		Residual:  math.Abs(D + D*D*D/3 - M),
		Converged: true,
		mean:      M,
		ecc:       1,
	}, nil
}

func signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
