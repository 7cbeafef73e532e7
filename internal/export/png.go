package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/barfea/internal/dynamo"
	"github.com/san-kum/barfea/internal/experiment"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const pngDPI = 300

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)

	p.X.Label.TextStyle.Font.Size = vg.Points(13)
	p.Y.Label.TextStyle.Font.Size = vg.Points(13)
	p.X.Tick.Label.Font.Size = vg.Points(11)
	p.Y.Tick.Label.Font.Size = vg.Points(11)

	p.X.LineStyle.Width = vg.Points(1.2)
	p.Y.LineStyle.Width = vg.Points(1.2)
	p.X.Padding = vg.Points(10)
	p.Y.Padding = vg.Points(10)

	p.Add(plotter.NewGrid())
}

// DisplacementPlot draws u against node position, with constrained nodes marked.
func DisplacementPlot(out *experiment.Outcome) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: axial displacement", out.Problem.Name)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "u"
	stylePlot(p)

	pts := make(plotter.XYs, len(out.Mesh))
	for i, x := range out.Mesh {
		pts[i].X = x
		pts[i].Y = out.Result.Displacements[i]
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(2)
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points)

	if len(out.Result.Reactions) > 0 {
		fixed := make(plotter.XYs, 0, len(out.Result.Reactions))
		for i, x := range out.Mesh {
			if _, ok := out.Result.Reactions[i]; ok {
				fixed = append(fixed, plotter.XY{X: x, Y: out.Result.Displacements[i]})
			}
		}
		supports, err := plotter.NewScatter(fixed)
		if err != nil {
			return nil, err
		}
		supports.Shape = draw.BoxGlyph{}
		supports.Color = color.RGBA{R: 200, A: 255}
		supports.Radius = vg.Points(4)
		p.Add(supports)
		p.Legend.Add("constrained", supports)
	}
	return p, nil
}

// ModesPlot overlays the mode shapes against node position.
func ModesPlot(out *experiment.Outcome) (*plot.Plot, error) {
	if out.Modal == nil || len(out.Modal.Shapes) == 0 {
		return nil, fmt.Errorf("no modes to plot")
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: mode shapes", out.Problem.Name)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "phi"
	stylePlot(p)

	for m, shape := range out.Modal.Shapes {
		pts := make(plotter.XYs, len(out.Mesh))
		for i, x := range out.Mesh {
			pts[i].X = x
			pts[i].Y = shape[i]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = plotutil.Color(m)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("mode %d (%.4g Hz)", m+1, out.Modal.Hz[m]), line)
	}
	p.Legend.Top = true
	return p, nil
}

// OrbitPlot draws the (x, y) path of a [x, y, vx, vy] trajectory.
func OrbitPlot(states []dynamo.State, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (km)"
	p.Y.Label.Text = "y (km)"
	stylePlot(p)

	pts := make(plotter.XYs, len(states))
	for i, s := range states {
		pts[i].X, pts[i].Y = s[0], s[1]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)

	central, err := plotter.NewScatter(plotter.XYs{{X: 0, Y: 0}})
	if err != nil {
		return nil, err
	}
	central.Shape = draw.CircleGlyph{}
	central.Radius = vg.Points(5)
	p.Add(central)
	return p, nil
}

// WritePNG renders p at 300 dpi.
func WritePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(pngDPI),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

func SavePNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	if err := WritePNG(f, p, widthIn, heightIn); err != nil {
		return err
	}
	return f.Close()
}
