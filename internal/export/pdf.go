package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/san-kum/barfea/internal/experiment"
)

// maxReportRows caps the node and element tables; longer bars are summarised.
const maxReportRows = 40

// Report writes an A4 calculation report: problem data, the displacement
// plot, node and element tables, and natural frequencies when present.
func Report(w io.Writer, out *experiment.Outcome) error {
	p := out.Problem

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Axial bar analysis: %s", p.Name))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Nodes: %d   Length: %.4g", len(out.Mesh), out.Mesh.Length()))
	pdf.Ln(6)
	if len(p.Stiffness) > 0 {
		pdf.Cell(0, 6, "Element stiffness given directly")
	} else {
		pdf.Cell(0, 6, fmt.Sprintf("E = %.4g   A = %.4g   rho = %.4g", p.Modulus, p.Area, p.Density))
	}
	pdf.Ln(6)

	node, peak := out.Result.Displacements.MaxAbs()
	pdf.Cell(0, 6, fmt.Sprintf("Max |u| = %.6g at node %d", peak, node))
	pdf.Ln(10)

	plt, err := DisplacementPlot(out)
	if err != nil {
		return err
	}
	var img bytes.Buffer
	if err := WritePNG(&img, plt, 6, 3.5); err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("displacement", opts, &img)
	pdf.ImageOptions("displacement", 10, pdf.GetY(), 150, 0, true, opts, 0, "")
	pdf.Ln(4)

	section(pdf, "Nodes")
	table(pdf, []string{"node", "x", "u", "reaction"}, len(out.Mesh), func(i int) []string {
		reaction := "-"
		if r, ok := out.Result.Reactions[i]; ok {
			reaction = fmt.Sprintf("%.6g", r)
		}
		return []string{fmt.Sprint(i), fmt.Sprintf("%.6g", out.Mesh[i]), fmt.Sprintf("%.6g", out.Result.Displacements[i]), reaction}
	})

	section(pdf, "Elements")
	table(pdf, []string{"element", "length", "force", "strain"}, len(out.Result.ElementForces), func(e int) []string {
		return []string{fmt.Sprint(e), fmt.Sprintf("%.6g", out.Mesh.ElementLength(e)), fmt.Sprintf("%.6g", out.Result.ElementForces[e]), fmt.Sprintf("%.6g", out.Result.Strains[e])}
	})

	section(pdf, "Supports")
	for _, n := range sortedReactionNodes(out.Result.Reactions) {
		pdf.Cell(0, 6, fmt.Sprintf("node %d: reaction %.6g", n, out.Result.Reactions[n]))
		pdf.Ln(6)
	}

	if out.Modal != nil {
		section(pdf, "Natural frequencies")
		table(pdf, []string{"mode", "omega (rad/s)", "f (Hz)"}, len(out.Modal.Omega), func(m int) []string {
			return []string{fmt.Sprint(m + 1), fmt.Sprintf("%.6g", out.Modal.Omega[m]), fmt.Sprintf("%.6g", out.Modal.Hz[m])}
		})
	}

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
}

func table(pdf *gofpdf.Fpdf, header []string, n int, row func(int) []string) {
	const colW, rowH = 40.0, 6.0

	pdf.SetFont("Helvetica", "B", 10)
	for _, h := range header {
		pdf.CellFormat(colW, rowH, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	shown := min(n, maxReportRows)
	for i := 0; i < shown; i++ {
		for _, v := range row(i) {
			pdf.CellFormat(colW, rowH, v, "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if shown < n {
		pdf.Cell(0, rowH, fmt.Sprintf("... %d more rows in the workbook export", n-shown))
		pdf.Ln(rowH)
	}
}

func SaveReport(path string, out *experiment.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create report: %w", err)
	}
	defer f.Close()

	if err := Report(f, out); err != nil {
		return err
	}
	return f.Close()
}

func sortedReactionNodes(reactions map[int]float64) []int {
	nodes := make([]int, 0, len(reactions))
	for n := range reactions {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)
	return nodes
}
