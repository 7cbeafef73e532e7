package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	cyan    = lipgloss.Color("#00cccc")
	aqua    = lipgloss.Color("#00ffff")
	blue    = lipgloss.Color("#00ccff")
	white   = lipgloss.Color("#ffffff")
	grey    = lipgloss.Color("#888899")
	dim     = lipgloss.Color("#666688")
	darker  = lipgloss.Color("#555566")
	border  = lipgloss.Color("#444466")
	green   = lipgloss.Color("#00ff88")
	red     = lipgloss.Color("#ff4444")
	keyTeal = lipgloss.Color("#00aaaa")
)

func fg(c lipgloss.Color) lipgloss.Style     { return lipgloss.NewStyle().Foreground(c) }
func boldFg(c lipgloss.Color) lipgloss.Style { return fg(c).Bold(true) }

var (
	Title       = boldFg(cyan)
	Subtle      = fg(dim)
	Selected    = boldFg(white)
	Marker      = boldFg(aqua)
	Unselected  = fg(darker)
	MetricValue = boldFg(blue)
	MetricLabel = fg(grey)
	KeyName     = boldFg(keyTeal)
	ErrorText   = boldFg(red)

	HeaderStyle = boldFg(white).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(border)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)

	Tension     = fg(green)
	Compression = fg(red)
)

// KeyHints renders "key action" pairs as a footer line.
func KeyHints(pairs ...string) string {
	hints := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		hints = append(hints, KeyName.Render(pairs[i])+Subtle.Render(" "+pairs[i+1]))
	}
	return strings.Join(hints, "  ")
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws one block per bucket of values, at most width blocks, each
// the bucket mean scaled between the overall minimum and maximum. Negative
// means are drawn as Compression.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	n := min(width, len(values))
	var b strings.Builder
	for i := 0; i < n; i++ {
		bucket := values[i*len(values)/n : (i+1)*len(values)/n]
		var mean float64
		for _, v := range bucket {
			mean += v
		}
		mean /= float64(len(bucket))

		level := int((mean - lo) / span * float64(len(sparkLevels)-1))
		level = min(max(level, 0), len(sparkLevels)-1)
		style := Tension
		if mean < 0 {
			style = Compression
		}
		b.WriteString(style.Render(string(sparkLevels[level])))
	}
	return b.String()
}

func Separator(width int) string {
	return Subtle.Render(strings.Repeat("─", width))
}
