// Package export renders orbits as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Layer is one polyline of an SVG plot.
type Layer struct {
	Points []r2.Vec
	Stroke string
	Width  float64
	Closed bool
	Dashed bool
}

// Marker is a filled circle at a world position.
type Marker struct {
	At     r2.Vec
	Fill   string
	Radius float64
	Label  string
}

// Plot is a square-aspect SVG scene. World +y points up.
type Plot struct {
	Width, Height int
	Background    string
	Layers        []Layer
	Markers       []Marker
}

// bounds returns the world box around all finite points and markers, padded
// by 10% and widened to the plot's aspect ratio.
func (p Plot) bounds() (lo, hi r2.Vec) {
	var xs, ys []float64
	for _, l := range p.Layers {
		for _, v := range l.Points {
			if finite(v) {
				xs = append(xs, v.X)
				ys = append(ys, v.Y)
			}
		}
	}
	for _, m := range p.Markers {
		if finite(m.At) {
			xs = append(xs, m.At.X)
			ys = append(ys, m.At.Y)
		}
	}
	if len(xs) == 0 {
		return r2.Vec{X: -1, Y: -1}, r2.Vec{X: 1, Y: 1}
	}

	lo = r2.Vec{X: floats.Min(xs), Y: floats.Min(ys)}
	hi = r2.Vec{X: floats.Max(xs), Y: floats.Max(ys)}
	w, h := hi.X-lo.X, hi.Y-lo.Y
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	aspect := float64(p.Width) / float64(p.Height)
	if w/h > aspect {
		h = w / aspect
	} else {
		w = h * aspect
	}
	mid := r2.Scale(0.5, r2.Add(lo, hi))
	half := r2.Vec{X: w * 0.55, Y: h * 0.55}
	return r2.Sub(mid, half), r2.Add(mid, half)
}

// SVG renders the plot.
func (p Plot) SVG() string {
	if p.Width <= 0 || p.Height <= 0 {
		return ""
	}
	bg := p.Background
	if bg == "" {
		bg = "#0a0a0a"
	}
	lo, hi := p.bounds()
	toScreen := func(v r2.Vec) (float64, float64) {
		x := (v.X - lo.X) / (hi.X - lo.X) * float64(p.Width)
		y := float64(p.Height) - (v.Y-lo.Y)/(hi.Y-lo.Y)*float64(p.Height)
		return x, y
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, p.Width, p.Height, p.Width, p.Height, bg))

	for _, l := range p.Layers {
		d := pathData(l.Points, l.Closed, toScreen)
		if d == "" {
			continue
		}
		w := l.Width
		if w == 0 {
			w = 1.5
		}
		dash := ""
		if l.Dashed {
			dash = ` stroke-dasharray="4 3"`
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="%.1f"%s d="%s"/>
`, l.Stroke, w, dash, d))
	}

	for _, m := range p.Markers {
		if !finite(m.At) {
			continue
		}
		x, y := toScreen(m.At)
		r := m.Radius
		if r == 0 {
			r = 4
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, x, y, r, m.Fill))
		if m.Label != "" {
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="12">%s</text>
`, x+r+2, y-r-2, m.Fill, escape(m.Label)))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// pathData builds the d attribute. Non-finite points start a new subpath.
func pathData(pts []r2.Vec, closed bool, toScreen func(r2.Vec) (float64, float64)) string {
	var sb strings.Builder
	pen := false
	segments := 0
	for _, v := range pts {
		if !finite(v) {
			pen = false
			continue
		}
		x, y := toScreen(v)
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		if pen {
			sb.WriteString(fmt.Sprintf("L%.1f,%.1f", x, y))
			segments++
		} else {
			sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
			pen = true
		}
	}
	if segments == 0 {
		return ""
	}
	if closed {
		sb.WriteString(" Z")
	}
	return sb.String()
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return escaper.Replace(s) }
