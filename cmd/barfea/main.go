package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/san-kum/barfea/internal/config"
	"github.com/san-kum/barfea/internal/experiment"
	"github.com/san-kum/barfea/internal/export"
	"github.com/san-kum/barfea/internal/server"
	"github.com/san-kum/barfea/internal/storage"
	"github.com/san-kum/barfea/internal/study"
	"github.com/san-kum/barfea/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	preset   string
	elements int
	length   float64
	modes    int
	save     bool
	pngPath  string
	xlsxPath string
	pdfPath  string
	plot     bool
	addr     string
	orbitCfg = experiment.DefaultOrbitConfig()
	svgPath  string
	levels   int
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:          "barfea",
		Short:        "axial bar finite element solver",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunBrowser(storage.New(dataDir))
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", env.DataDir, "data directory")

	solveCmd := &cobra.Command{
		Use:   "solve [problem.yaml]",
		Short: "solve a bar statically",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	problemFlags(solveCmd)
	solveCmd.Flags().IntVar(&modes, "modes", 0, "also compute this many modes")
	solveCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")
	solveCmd.Flags().StringVar(&pngPath, "png", "", "write a displacement plot (png)")
	solveCmd.Flags().StringVar(&svgPath, "svg", "", "write a displacement plot (svg)")
	solveCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write a workbook (xlsx)")
	solveCmd.Flags().StringVar(&pdfPath, "pdf", "", "write a report (pdf)")
	solveCmd.Flags().BoolVar(&plot, "plot", false, "plot displacements in the terminal")

	modesCmd := &cobra.Command{
		Use:   "modes [problem.yaml]",
		Short: "natural frequencies and mode shapes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runModes,
	}
	problemFlags(modesCmd)
	modesCmd.Flags().IntVar(&modes, "count", config.DefaultModes, "number of modes")
	modesCmd.Flags().StringVar(&pngPath, "png", "", "write a mode shape plot (png)")
	modesCmd.Flags().BoolVar(&plot, "plot", false, "plot mode shapes in the terminal")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tNODES\tLOADS\tCONSTRAINTS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				mesh, err := p.Mesh()
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", name, len(mesh), len(p.Loads), len(p.Constraints))
			}
			return w.Flush()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a run's node table as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).CopyNodes(os.Stdout, args[0])
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a run as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	orbitCmd := &cobra.Command{
		Use:   "orbit",
		Short: "propagate a circular two-body orbit",
		RunE:  runOrbit,
	}
	orbitCmd.Flags().Float64Var(&orbitCfg.Radius, "radius", orbitCfg.Radius, "orbit radius (km)")
	orbitCmd.Flags().Float64Var(&orbitCfg.Periods, "periods", orbitCfg.Periods, "revolutions to propagate")
	orbitCmd.Flags().Float64Var(&orbitCfg.Dt, "dt", orbitCfg.Dt, "timestep (s)")
	orbitCmd.Flags().StringVar(&orbitCfg.Integrator, "integrator", orbitCfg.Integrator, "integrator")
	orbitCmd.Flags().BoolVar(&orbitCfg.Adaptive, "adaptive", false, "adaptive step size")
	orbitCmd.Flags().Float64Var(&orbitCfg.Tolerance, "tol", orbitCfg.Tolerance, "adaptive error tolerance")
	orbitCmd.Flags().StringVar(&svgPath, "svg", "", "write the trajectory (svg)")
	orbitCmd.Flags().StringVar(&pngPath, "png", "", "write the trajectory (png)")
	orbitCmd.Flags().BoolVar(&plot, "plot", false, "plot the trajectory in the terminal")

	convergeCmd := &cobra.Command{
		Use:   "converge [problem.yaml]",
		Short: "mesh convergence study",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConverge,
	}
	problemFlags(convergeCmd)
	convergeCmd.Flags().IntVar(&levels, "levels", 4, "number of meshes, each twice as fine as the last")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same orbit",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().Float64Var(&orbitCfg.Radius, "radius", orbitCfg.Radius, "orbit radius (km)")
	compareCmd.Flags().Float64Var(&orbitCfg.Periods, "periods", orbitCfg.Periods, "revolutions to propagate")
	compareCmd.Flags().Float64Var(&orbitCfg.Dt, "dt", orbitCfg.Dt, "timestep (s)")

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "interactive preset browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunBrowser(storage.New(dataDir))
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			store := storage.New(dataDir)
			if err := store.Init(); err != nil {
				return err
			}
			logger := log.New(os.Stderr, "barfea ", log.LstdFlags)
			srv := server.New(env, store, logger)
			return server.ListenAndServe(ctx, addr, srv.Handler(), logger)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", env.Addr, "listen address")

	rootCmd.AddCommand(solveCmd, modesCmd, presetsCmd, listCmd, showCmd, exportCSVCmd, exportJSONCmd, orbitCmd, convergeCmd, compareCmd, browseCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func problemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in problem")
	cmd.Flags().IntVar(&elements, "elements", config.DefaultElements, "elements of a uniform mesh")
	cmd.Flags().Float64Var(&length, "length", config.DefaultLength, "length of a uniform mesh")
}

// loadProblem reads the problem named by --preset or the file argument, with
// --elements and --length overriding a uniform mesh.
func loadProblem(cmd *cobra.Command, args []string) (*config.Problem, error) {
	var p *config.Problem
	switch {
	case preset != "":
		p = config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	case len(args) == 1:
		var err error
		if p, err = config.Load(args[0]); err != nil {
			return nil, fmt.Errorf("failed to load problem: %w", err)
		}
	default:
		return nil, errors.New("need a problem file or --preset")
	}

	changed := cmd.Flags().Changed("elements") || cmd.Flags().Changed("length")
	if changed && len(p.Nodes) > 0 {
		return nil, errors.New("--elements and --length only apply to uniform meshes")
	}
	if cmd.Flags().Changed("elements") {
		p.Elements = elements
	}
	if cmd.Flags().Changed("length") {
		p.Length = length
	}
	return p, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(cmd, args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("modes") {
		p.Modes = modes
	} else {
		p.Modes = 0
	}

	out, err := experiment.New(p).Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(viz.Summary(out))
	fmt.Println()
	fmt.Print(viz.NodeTable(out))
	fmt.Println()
	fmt.Print(viz.ElementTable(out))
	if plot {
		fmt.Println()
		fmt.Println(viz.DisplacementPlot(out.Result.Displacements, 70, 12))
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(out)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	if pngPath != "" {
		plt, err := export.DisplacementPlot(out)
		if err != nil {
			return err
		}
		if err := export.SavePNG(plt, 8, 5, pngPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pngPath)
	}
	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.DisplacementSVG(out, 800, 400)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	if xlsxPath != "" {
		if err := export.SaveWorkbook(xlsxPath, out); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", xlsxPath)
	}
	if pdfPath != "" {
		if err := export.SaveReport(pdfPath, out); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pdfPath)
	}
	return nil
}

func runModes(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(cmd, args)
	if err != nil {
		return err
	}
	if modes <= 0 {
		return fmt.Errorf("--count must be positive, got %d", modes)
	}
	p.Modes = modes

	out, err := experiment.New(p).Run(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tOMEGA (rad/s)\tFREQ (Hz)")
	for i, omega := range out.Modal.Omega {
		fmt.Fprintf(w, "%d\t%.6g\t%.6g\n", i+1, omega, out.Modal.Hz[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if plot {
		fmt.Println()
		fmt.Println(viz.ModesPlot(out.Modal.Shapes, out.Modal.Hz, 70, 12))
	}
	if pngPath != "" {
		plt, err := export.ModesPlot(out)
		if err != nil {
			return err
		}
		if err := export.SavePNG(plt, 8, 5, pngPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pngPath)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tNODES\tMAX |U|\tAT NODE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.6g\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Nodes,
			run.MaxDisplacement,
			run.MaxNode,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	nodes, err := st.LoadNodes(args[0])
	if err != nil {
		return err
	}
	elements, err := st.LoadElements(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("saved: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("max |u|: %.6g at node %d\n", meta.MaxDisplacement, meta.MaxNode)
	if len(meta.Hz) > 0 {
		fmt.Printf("modes (Hz): %.4g\n", meta.Hz)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tX\tU\tREACTION")
	for _, n := range nodes {
		fmt.Fprintf(w, "%d\t%.6g\t%.6g\t%.6g\n", n.Node, n.X, n.U, n.Reaction)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "ELEMENT\tLENGTH\tFORCE\tSTRAIN")
	for _, e := range elements {
		fmt.Fprintf(w, "%d\t%.6g\t%.6g\t%.6g\n", e.Element, e.Length, e.Force, e.Strain)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	u := make([]float64, len(nodes))
	for i, n := range nodes {
		u[i] = n.U
	}
	fmt.Println()
	fmt.Println(viz.DisplacementPlot(u, 70, 10))
	return nil
}

func runOrbit(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	fmt.Printf("propagating %.4g km orbit with %s...\n", orbitCfg.Radius, orbitCfg.Integrator)
	out, err := experiment.Orbit(ctx, orbitCfg)
	if out == nil {
		return err
	}
	if err != nil {
		fmt.Printf("stopped early: %v\n", err)
	}

	res := out.Result
	fmt.Printf("period: %.2f s\n", out.Period)
	fmt.Printf("steps: %d\n", res.StepsTaken)
	fmt.Printf("energy drift: %.3e\n", res.EnergyDrift)
	fmt.Printf("final a: %.6f km  e: %.3e\n", out.SemiMajor, out.Eccentricity)

	if plot {
		fmt.Println()
		fmt.Println(viz.OrbitPlot(res.States, 60, 20))
		fmt.Println(viz.RadiusPlot(res.States, 70, 8))
	}
	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.OrbitSVG(res.States, 600, 600)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	if pngPath != "" {
		plt, err := export.OrbitPlot(res.States, fmt.Sprintf("%.4g km orbit (%s)", orbitCfg.Radius, orbitCfg.Integrator))
		if err != nil {
			return err
		}
		if err := export.SavePNG(plt, 6, 6, pngPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pngPath)
	}
	return err
}

func runConverge(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(cmd, args)
	if err != nil {
		return err
	}
	if levels < 1 {
		return fmt.Errorf("--levels must be positive, got %d", levels)
	}
	counts := make([]int, levels)
	for i := range counts {
		counts[i] = p.Elements << i
	}

	points, err := study.Convergence(cmd.Context(), p, counts)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ELEMENTS\tMAX |U|\tAT NODE\tOMEGA_1\tCHANGE")
	for _, pt := range points {
		fmt.Fprintf(w, "%d\t%.8g\t%d\t%.8g\t%.2e\n", pt.Elements, pt.MaxAbs, pt.MaxNode, pt.Omega1, pt.Change)
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	fmt.Printf("comparing integrators on a %.4g km orbit (dt=%.4g s, %.4g periods)\n\n", orbitCfg.Radius, orbitCfg.Dt, orbitCfg.Periods)
	fmt.Printf("%-12s  %8s  %12s  %14s  %12s  %10s\n", "integrator", "steps", "energy_drift", "a_km", "e", "time_ms")
	fmt.Println(strings.Repeat("-", 78))

	for _, c := range study.CompareIntegrators(cmd.Context(), orbitCfg, args) {
		if c.Err != nil {
			fmt.Printf("%-12s  error: %v\n", c.Integrator, c.Err)
			continue
		}
		fmt.Printf("%-12s  %8d  %12.2e  %14.6f  %12.2e  %10.2f\n",
			c.Integrator, c.Steps, c.EnergyDrift, c.SemiMajor, c.Eccentricity, float64(c.Elapsed.Microseconds())/1000)
	}
	return nil
}
