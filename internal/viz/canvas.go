package viz

import (
	"image"
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Braille cells are 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// offset from U+2800.
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// PixelSize is the canvas size in dots.
func (c *Canvas) PixelSize() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return int(c.Grid[y/4][x/2]-brailleBlank)&pixelMap[y%4][x%2] != 0
}

// Blob lights a 3x3 block, used for bodies.
func (c *Canvas) Blob(x, y int) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c.Set(x+dx, y+dy)
		}
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawPath joins consecutive world points through vp. Non-finite points break
// the polyline.
func (c *Canvas) DrawPath(vp Viewport, pts []r2.Vec, closed bool) {
	var prevX, prevY int
	havePrev := false
	for _, p := range pts {
		x, y, ok := vp.Project(c, p)
		if !ok {
			havePrev = false
			continue
		}
		if havePrev {
			c.DrawLine(prevX, prevY, x, y)
		} else {
			c.Set(x, y)
		}
		prevX, prevY, havePrev = x, y, true
	}
	if closed && len(pts) > 2 {
		x0, y0, ok0 := vp.Project(c, pts[0])
		x1, y1, ok1 := vp.Project(c, pts[len(pts)-1])
		if ok0 && ok1 {
			c.DrawLine(x1, y1, x0, y0)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Image rasterizes the canvas with each cell charW by charH pixels, for GIF
// recording.
func (c *Canvas) Image(charW, charH int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4
	pw, ph := c.PixelSize()
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	return img
}

// Viewport maps a world rectangle onto a canvas with +y up, keeping the
// aspect ratio of the world.
type Viewport struct {
	Min, Max r2.Vec
}

// FitViewport returns the smallest square viewport around pts, grown by
// margin on each side as a fraction of its extent. The origin is always
// included.
func FitViewport(pts []r2.Vec, margin float64) Viewport {
	xs := []float64{0}
	ys := []float64{0}
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			continue
		}
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}
	lo := r2.Vec{X: floats.Min(xs), Y: floats.Min(ys)}
	hi := r2.Vec{X: floats.Max(xs), Y: floats.Max(ys)}

	half := math.Max(hi.X-lo.X, hi.Y-lo.Y) / 2
	if half == 0 {
		half = 1
	}
	half *= 1 + margin
	mid := r2.Scale(0.5, r2.Add(lo, hi))
	d := r2.Vec{X: half, Y: half}
	return Viewport{Min: r2.Sub(mid, d), Max: r2.Add(mid, d)}
}

// Project returns the dot for world point p. Terminal cells are about twice as
// tall as they are wide, and dots are 2x4 per cell, so one dot is square and
// the square world box maps onto the largest centered square of dots.
func (v Viewport) Project(c *Canvas, p r2.Vec) (int, int, bool) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return 0, 0, false
	}
	pw, ph := c.PixelSize()
	side := float64(min(pw, ph) - 1)
	offX := float64(pw-1)/2 - side/2
	offY := float64(ph-1)/2 - side/2

	w := v.Max.X - v.Min.X
	h := v.Max.Y - v.Min.Y
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	x := offX + (p.X-v.Min.X)/w*side
	y := offY + (v.Max.Y-p.Y)/h*side
	if x < -1e6 || x > 1e6 || y < -1e6 || y > 1e6 {
		return 0, 0, false
	}
	return int(math.Round(x)), int(math.Round(y)), true
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
