package analysis

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

var ErrTooShort = errors.New("analysis: series too short")

// PowerSpectrum returns |X_k|² for k = 0..n/2 of the mean-removed series.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := floats.Sum(data) / float64(len(data))
	centered := make([]float64, len(data))
	copy(centered, data)
	floats.AddConst(-mean, centered)

	coeff := fourier.NewFFT(len(data)).Coefficients(nil, centered)
	out := make([]float64, len(coeff))
	for k, c := range coeff {
		a := cmplx.Abs(c)
		out[k] = a * a
	}
	return out
}

// DominantPeriod estimates the strongest period of a series sampled every dt.
// The peak bin is refined by a parabola through its neighbours, so a series
// spanning a few whole periods resolves well below one bin.
func DominantPeriod(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: %d samples", ErrTooShort, len(data))
	}
	if !(dt > 0) {
		return 0, fmt.Errorf("analysis: sample spacing must be positive, got %g", dt)
	}
	ps := PowerSpectrum(data)
	k := floats.MaxIdx(ps[1:]) + 1
	if ps[k] == 0 {
		return 0, errors.New("analysis: constant series has no period")
	}

	bin := float64(k)
	if k+1 < len(ps) {
		y0, y1, y2 := ps[k-1], ps[k], ps[k+1]
		if d := y0 - 2*y1 + y2; d != 0 {
			bin += 0.5 * (y0 - y2) / d
		}
	}
	return float64(len(data)) * dt / bin, nil
}
