package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/keplerlab/internal/dynamo"
	"github.com/san-kum/keplerlab/internal/kepler"
)

var csvHeader = []string{"time", "x", "y", "vx", "vy"}

// Sample is one row of an ephemeris: a state vector at a time.
type Sample struct {
	Time  float64            `json:"time"`
	State kepler.StateVector `json:"state"`
}

// SamplesFromResult converts the recorded planar states of a run.
func SamplesFromResult(result *dynamo.Result) ([]Sample, error) {
	if len(result.States) != len(result.Times) {
		return nil, fmt.Errorf("storage: %d states for %d times: %w", len(result.States), len(result.Times), dynamo.ErrDimensionMismatch)
	}
	out := make([]Sample, len(result.States))
	for i, x := range result.States {
		if len(x) != 4 {
			return nil, fmt.Errorf("storage: state %d has %d components: %w", i, len(x), dynamo.ErrDimensionMismatch)
		}
		out[i] = Sample{
			Time:  result.Times[i],
			State: kepler.StateVector{Position: x.Position(), Velocity: x.Velocity()},
		}
	}
	return out, nil
}

// Ephemeris evaluates the closed-form orbit at n+1 evenly spaced times from
// start to end inclusive. Unconverged solves keep their best estimate and the
// first such error is returned with the full table.
func Ephemeris(el kepler.Elements, start, end float64, n int) ([]Sample, error) {
	if n < 1 {
		return nil, fmt.Errorf("storage: ephemeris needs at least one interval, got %d", n)
	}
	out := make([]Sample, 0, n+1)
	var firstErr error
	step := (end - start) / float64(n)
	for i := 0; i <= n; i++ {
		t := start + float64(i)*step
		sv, err := el.StateAt(t)
		if err != nil {
			var ce *kepler.ConvergenceError
			if !errors.As(err, &ce) {
				return nil, err
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		out = append(out, Sample{Time: t, State: sv})
	}
	return out, firstErr
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			formatFloat(s.Time),
			formatFloat(s.State.Position.X),
			formatFloat(s.State.Position.Y),
			formatFloat(s.State.Velocity.X),
			formatFloat(s.State.Velocity.Y),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the format written by WriteCSV.
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []Sample{}, nil
	}

	out := make([]Sample, 0, len(records)-1)
	for line, record := range records[1:] {
		var v [5]float64
		for j, field := range record {
			if v[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("storage: line %d: %w", line+2, err)
			}
		}
		out = append(out, Sample{
			Time: v[0],
			State: kepler.StateVector{
				Position: r2.Vec{X: v[1], Y: v[2]},
				Velocity: r2.Vec{X: v[3], Y: v[4]},
			},
		})
	}
	return out, nil
}

type ExportData struct {
	Elements   kepler.Elements    `json:"elements"`
	Conic      string             `json:"conic"`
	Integrator string             `json:"integrator,omitempty"`
	Dt         float64            `json:"dt,omitempty"`
	Duration   float64            `json:"duration,omitempty"`
	Samples    []Sample           `json:"samples"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

func ExportJSON(w io.Writer, data ExportData) error {
	if data.Conic == "" {
		data.Conic = data.Elements.Conic().String()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
