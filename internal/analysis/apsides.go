package analysis

import (
	"fmt"
)

// Apsis is a closest or farthest approach found in a distance series.
type Apsis struct {
	Index     int
	Time      float64
	Distance  float64
	Periapsis bool
}

// Apsides returns the interior local extrema of r, each refined by a
// parabola through the neighbouring samples. Plateaus are ignored.
func Apsides(t, r []float64) []Apsis {
	var out []Apsis
	for i := 1; i+1 < len(r) && i+1 < len(t); i++ {
		lo := r[i] < r[i-1] && r[i] < r[i+1]
		hi := r[i] > r[i-1] && r[i] > r[i+1]
		if !lo && !hi {
			continue
		}
		h := (t[i+1] - t[i-1]) / 2
		y0, y1, y2 := r[i-1], r[i], r[i+1]
		shift := 0.5 * (y0 - y2) / (y0 - 2*y1 + y2)
		out = append(out, Apsis{
			Index:     i,
			Time:      t[i] + shift*h,
			Distance:  y1 - 0.25*(y0-y2)*shift,
			Periapsis: lo,
		})
	}
	return out
}

// PeriodFromApsides averages the spacing of successive periapsides, falling
// back to apoapsides when fewer than two periapsides were seen.
func PeriodFromApsides(aps []Apsis) (float64, error) {
	for _, peri := range []bool{true, false} {
		var times []float64
		for _, a := range aps {
			if a.Periapsis == peri {
				times = append(times, a.Time)
			}
		}
		if len(times) >= 2 {
			return (times[len(times)-1] - times[0]) / float64(len(times)-1), nil
		}
	}
	return 0, fmt.Errorf("%w: need two apsides of the same kind, have %d apsides", ErrTooShort, len(aps))
}
