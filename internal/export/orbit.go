package export

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/keplerlab/internal/kepler"
	"github.com/san-kum/keplerlab/internal/orbit"
)

const (
	orbitStroke      = "#00ffff"
	trajectoryStroke = "#ff00ff"
	focusFill        = "#ffff00"
	periapsisFill    = "#00ff88"
)

// OrbitSVG draws the closed-form outline of path with the central body at the
// origin and a periapsis marker. A non-empty trajectory, such as the positions
// of a numerical run, is overlaid dashed.
func OrbitSVG(path *orbit.Path, samples int, trajectory []r2.Vec, width, height int) (string, error) {
	outline, err := path.Sample(samples)
	if err != nil {
		return "", err
	}
	el := path.Elements()

	plot := Plot{
		Width:  width,
		Height: height,
		Layers: []Layer{{Points: outline, Stroke: orbitStroke, Closed: el.Conic().Closed()}},
		Markers: []Marker{
			{At: r2.Vec{}, Fill: focusFill, Radius: 6, Label: "focus"},
		},
	}
	if peri, err := el.StateFromAnomaly(0); err == nil {
		plot.Markers = append(plot.Markers, Marker{At: peri.Position, Fill: periapsisFill, Label: "periapsis"})
	}
	if len(trajectory) > 1 {
		plot.Layers = append(plot.Layers, Layer{Points: trajectory, Stroke: trajectoryStroke, Width: 1, Dashed: true})
	}
	return plot.SVG(), nil
}

// Positions extracts the position track of a state sequence.
func Positions(states []kepler.StateVector) []r2.Vec {
	out := make([]r2.Vec, len(states))
	for i, s := range states {
		out[i] = s.Position
	}
	return out
}
