package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/barfea/internal/dynamo"
	"github.com/san-kum/barfea/internal/experiment"
)

const svgBackground = "#0a0a0a"

// viewport maps data coordinates onto a width x height pixel box with 10%
// padding on each axis. SVG y grows downwards.
type viewport struct {
	x0, y0, sx, sy float64
	h              float64
}

func fit(xs, ys []float64, width, height int) viewport {
	lo := func(v []float64) (float64, float64) {
		a, b := v[0], v[0]
		for _, x := range v[1:] {
			a, b = min(a, x), max(b, x)
		}
		if b == a {
			return a, 1
		}
		return a, b - a
	}
	minX, spanX := lo(xs)
	minY, spanY := lo(ys)
	return viewport{
		x0: minX - 0.1*spanX,
		y0: minY - 0.1*spanY,
		sx: float64(width) / (1.2 * spanX),
		sy: float64(height) / (1.2 * spanY),
		h:  float64(height),
	}
}

func (v viewport) at(x, y float64) (float64, float64) {
	return (x - v.x0) * v.sx, v.h - (y-v.y0)*v.sy
}

func svgOpen(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(sb, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\">\n",
		width, height, width, height)
	fmt.Fprintf(sb, "<rect width=\"100%%\" height=\"100%%\" fill=%q/>\n", svgBackground)
}

func svgPath(sb *strings.Builder, v viewport, xs, ys []float64, stroke string) {
	fmt.Fprintf(sb, "<path fill=\"none\" stroke=%q stroke-width=\"1.5\" d=\"", stroke)
	for i := range xs {
		px, py := v.at(xs[i], ys[i])
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", px, py)
			continue
		}
		fmt.Fprintf(sb, " L%.1f,%.1f", px, py)
	}
	sb.WriteString("\"/>\n")
}

// PolylineSVG draws (xs[i], ys[i]) as one path. Fewer than two points give "".
func PolylineSVG(xs, ys []float64, width, height int, stroke string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}
	xs, ys = xs[:n], ys[:n]

	var sb strings.Builder
	svgOpen(&sb, width, height)
	svgPath(&sb, fit(xs, ys, width, height), xs, ys, stroke)
	sb.WriteString("</svg>")
	return sb.String()
}

// OrbitSVG traces the (x, y) components of a [x, y, vx, vy] trajectory.
func OrbitSVG(states []dynamo.State, width, height int) string {
	xs := make([]float64, len(states))
	ys := make([]float64, len(states))
	for i, s := range states {
		xs[i], ys[i] = s[0], s[1]
	}
	return PolylineSVG(xs, ys, width, height, "#00ff00")
}

// DisplacementSVG plots u against x with a marker on every constrained node.
func DisplacementSVG(out *experiment.Outcome, width, height int) string {
	xs := []float64(out.Mesh)
	us := []float64(out.Result.Displacements)
	if len(xs) < 2 {
		return ""
	}

	v := fit(xs, us, width, height)
	var sb strings.Builder
	svgOpen(&sb, width, height)
	zl, zy := v.at(xs[0], 0)
	zr, _ := v.at(xs[len(xs)-1], 0)
	fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=\"#444466\" stroke-dasharray=\"4 3\"/>\n",
		zl, zy, zr, zy)
	svgPath(&sb, v, xs, us, "#00ccff")
	for _, node := range sortedReactionNodes(out.Result.Reactions) {
		px, py := v.at(xs[node], us[node])
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"4\" fill=\"#ff4444\"/>\n", px, py)
	}
	sb.WriteString("</svg>")
	return sb.String()
}
