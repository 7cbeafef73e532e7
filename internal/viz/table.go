package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/barfea/internal/experiment"
)

// Summary renders the headline numbers of a solved bar.
func Summary(out *experiment.Outcome) string {
	node, peak := out.Result.Displacements.MaxAbs()
	lines := []string{
		metric("problem", out.Problem.Name),
		metric("nodes", fmt.Sprintf("%d", len(out.Mesh))),
		metric("length", fmt.Sprintf("%.4g", out.Mesh.Length())),
		metric("max |u|", fmt.Sprintf("%.6g at node %d", peak, node)),
		metric("solve time", out.Elapsed.String()),
	}
	if out.Modal != nil {
		hz := make([]string, len(out.Modal.Hz))
		for i, f := range out.Modal.Hz {
			hz[i] = fmt.Sprintf("%.4g", f)
		}
		lines = append(lines, metric("modes (Hz)", strings.Join(hz, ", ")))
	}
	return strings.Join(lines, "\n")
}

func metric(label, value string) string {
	return MetricLabel.Render(fmt.Sprintf("%-12s", label)) + MetricValue.Render(value)
}

// NodeTable lists position, displacement and reaction per node.
func NodeTable(out *experiment.Outcome) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%-6s %12s %14s %14s", "node", "x", "u", "reaction")) + "\n")
	for i, x := range out.Mesh {
		reaction := "-"
		if r, ok := out.Result.Reactions[i]; ok {
			reaction = fmt.Sprintf("%.6g", r)
		}
		fmt.Fprintf(&b, "%-6d %12.6g %14.6g %14s\n", i, x, out.Result.Displacements[i], reaction)
	}
	return b.String()
}

// ElementTable lists axial force and strain per element.
func ElementTable(out *experiment.Outcome) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%-8s %12s %14s %14s", "element", "length", "force", "strain")) + "\n")
	for e, f := range out.Result.ElementForces {
		force := fmt.Sprintf("%14.6g", f)
		if f < 0 {
			force = Compression.Render(force)
		}
		fmt.Fprintf(&b, "%-8d %12.6g %s %14.6g\n", e, out.Mesh.ElementLength(e), force, out.Result.Strains[e])
	}
	return b.String()
}
