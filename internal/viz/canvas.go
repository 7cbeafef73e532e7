package viz

import (
	"math"
	"strings"
)

const brailleBlank = '\u2800'

// brailleBit[row][col] is the dot bit for sub-cell (col, row) of a 2x4
// Braille cell. Dots 1-6 fill the top three rows column-major, 7 and 8 the
// bottom row.
var brailleBit = [4][2]uint8{
	{1 << 0, 1 << 3},
	{1 << 1, 1 << 4},
	{1 << 2, 1 << 5},
	{1 << 6, 1 << 7},
}

// Canvas is a dot raster of (2*Width) x (4*Height) printed as Width x Height
// Braille cells.
type Canvas struct {
	Width, Height int
	cells         []uint8
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{Width: w, Height: h, cells: make([]uint8, w*h)}
}

// Set turns on dot (x, y), y counted from the top. Dots off the canvas are
// dropped.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= 2*c.Width || y >= 4*c.Height {
		return
	}
	c.cells[(y/4)*c.Width+x/2] |= brailleBit[y%4][x%2]
}

// Empty reports whether no dot has been set.
func (c *Canvas) Empty() bool {
	for _, b := range c.cells {
		if b != 0 {
			return false
		}
	}
	return true
}

// DrawLine sets every dot on the segment between two dots.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		c.Set(x0, y0)
		return
	}
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		c.Set(x0+int(math.Round(f*float64(dx))), y0+int(math.Round(f*float64(dy))))
	}
}

// Trace draws the polyline (xs[i], ys[i]) fitted to the canvas with one
// scale for both axes, centred on the shorter one.
func (c *Canvas) Trace(xs, ys []float64) {
	n := min(len(xs), len(ys))
	if n == 0 {
		return
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < n; i++ {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	w, h := float64(2*c.Width-1), float64(4*c.Height-1)
	span := max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	k := min(w, h) / span
	padX := (w - (maxX-minX)*k) / 2
	padY := (h - (maxY-minY)*k) / 2

	dot := func(i int) (int, int) {
		x := padX + (xs[i]-minX)*k
		y := h - padY - (ys[i]-minY)*k
		return int(math.Round(x)), int(math.Round(y))
	}

	px, py := dot(0)
	c.Set(px, py)
	for i := 1; i < n; i++ {
		qx, qy := dot(i)
		c.DrawLine(px, py, qx, qy)
		px, py = qx, qy
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(c.Height * (3*c.Width + 1))
	for row := 0; row < c.Height; row++ {
		for _, bits := range c.cells[row*c.Width : (row+1)*c.Width] {
			b.WriteRune(brailleBlank + rune(bits))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
