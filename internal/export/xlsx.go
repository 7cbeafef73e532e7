package export

import (
	"fmt"
	"io"

	"github.com/san-kum/barfea/internal/experiment"
	"github.com/xuri/excelize/v2"
)

const (
	SheetNodes    = "Nodes"
	SheetElements = "Elements"
	SheetModes    = "Modes"
)

// Workbook lays a solved bar out as sheets Nodes (node, x, u, reaction),
// Elements (element, length, force, strain) and, when modes were computed,
// Modes (mode, omega, hz, then one shape value per node). The Nodes sheet
// carries a displacement chart.
func Workbook(out *experiment.Outcome) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetNodes); err != nil {
		f.Close()
		return nil, err
	}
	if err := fillWorkbook(f, out); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func fillWorkbook(f *excelize.File, out *experiment.Outcome) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rows := [][]any{{"node", "x", "u", "reaction"}}
	for i, x := range out.Mesh {
		var reaction any
		if r, ok := out.Result.Reactions[i]; ok {
			reaction = r
		}
		rows = append(rows, []any{i, x, out.Result.Displacements[i], reaction})
	}
	if err := writeSheet(f, SheetNodes, rows, bold); err != nil {
		return err
	}

	last := len(out.Mesh) + 1
	err = f.AddChart(SheetNodes, "F2", &excelize.Chart{
		Type: excelize.Scatter,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$C$1", SheetNodes),
			Categories: fmt.Sprintf("%s!$B$2:$B$%d", SheetNodes, last),
			Values:     fmt.Sprintf("%s!$C$2:$C$%d", SheetNodes, last),
		}},
		Title: []excelize.RichTextRun{{Text: "Axial displacement"}},
	})
	if err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetElements); err != nil {
		return err
	}
	rows = [][]any{{"element", "length", "force", "strain"}}
	for e, force := range out.Result.ElementForces {
		rows = append(rows, []any{e, out.Mesh.ElementLength(e), force, out.Result.Strains[e]})
	}
	if err := writeSheet(f, SheetElements, rows, bold); err != nil {
		return err
	}

	if out.Modal == nil {
		return nil
	}
	if _, err := f.NewSheet(SheetModes); err != nil {
		return err
	}
	header := []any{"mode", "omega", "hz"}
	for i := range out.Mesh {
		header = append(header, fmt.Sprintf("node %d", i))
	}
	rows = [][]any{header}
	for m, shape := range out.Modal.Shapes {
		row := []any{m + 1, out.Modal.Omega[m], out.Modal.Hz[m]}
		for _, v := range shape {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return writeSheet(f, SheetModes, rows, bold)
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "D", 14)
}

func WriteWorkbook(w io.Writer, out *experiment.Outcome) error {
	f, err := Workbook(out)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func SaveWorkbook(path string, out *experiment.Outcome) error {
	f, err := Workbook(out)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}
