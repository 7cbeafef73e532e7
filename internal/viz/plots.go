package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/barfea/internal/dynamo"
	"github.com/san-kum/barfea/internal/fea"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Blue,
	asciigraph.Yellow,
	asciigraph.Magenta,
	asciigraph.Cyan,
}

// DisplacementPlot graphs the nodal displacement against node index.
func DisplacementPlot(u fea.DisplacementField, width, height int) string {
	if len(u) == 0 {
		return ""
	}
	node, peak := u.MaxAbs()
	return asciigraph.Plot(u,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("displacement by node (max |u| = %.4g at node %d)", math.Abs(peak), node)),
	)
}

// ModesPlot overlays the mode shapes, one colour per mode.
func ModesPlot(shapes [][]float64, hz []float64, width, height int) string {
	if len(shapes) == 0 {
		return ""
	}
	caption := "mode shapes:"
	for i, f := range hz {
		caption += fmt.Sprintf(" %d=%.4g Hz", i+1, f)
	}
	return asciigraph.PlotMany(shapes,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(seriesColors[:min(len(shapes), len(seriesColors))]...),
		asciigraph.Caption(caption),
	)
}

// OrbitPlot draws the (x, y) path of a [x, y, vx, vy] trajectory.
func OrbitPlot(states []dynamo.State, width, height int) string {
	xs := make([]float64, 0, len(states))
	ys := make([]float64, 0, len(states))
	for _, s := range states {
		if len(s) < 2 {
			continue
		}
		xs = append(xs, s[0])
		ys = append(ys, s[1])
	}
	c := NewCanvas(width, height)
	c.Trace(xs, ys)
	return c.String()
}

// RadiusPlot graphs the distance from the origin over a trajectory.
func RadiusPlot(states []dynamo.State, width, height int) string {
	if len(states) == 0 {
		return ""
	}
	r := make([]float64, len(states))
	for i, s := range states {
		r[i] = math.Hypot(s[0], s[1])
	}
	return asciigraph.Plot(r,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("orbit radius"),
	)
}
