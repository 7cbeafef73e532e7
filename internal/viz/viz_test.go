package viz

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/barfea/internal/dynamo"
	"github.com/san-kum/barfea/internal/fea"
	"github.com/san-kum/barfea/internal/storage"
)

func TestCanvasTrace(t *testing.T) {
	c := NewCanvas(10, 5)
	c.Trace([]float64{0, 1}, []float64{0, 0})

	lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(lines))
	}
	// a horizontal segment lands on a single row, centred vertically
	drawn := 0
	for _, line := range lines {
		if strings.ContainsFunc(line, func(r rune) bool { return r != brailleBlank }) {
			drawn++
		}
	}
	if drawn != 1 {
		t.Errorf("expected one drawn row, got %d:\n%s", drawn, c)
	}
}

func TestCanvasIgnoresOutOfRange(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(-1, 0)
	c.Set(100, 100)
	if !c.Empty() {
		t.Fatal("out-of-range dot was drawn")
	}
	c.Set(3, 7)
	if c.Empty() || c.String() != "\u2800\u2800\n\u2800\u2880\n" {
		t.Errorf("expected only the last dot of the last cell, got %q", c.String())
	}
}

func TestOrbitPlot(t *testing.T) {
	states := make([]dynamo.State, 0, 64)
	for i := 0; i <= 64; i++ {
		a := 2 * math.Pi * float64(i) / 64
		states = append(states, dynamo.State{math.Cos(a), math.Sin(a), 0, 0})
	}
	out := OrbitPlot(states, 20, 10)
	if strings.Count(out, "\n") != 10 {
		t.Errorf("expected 10 rows, got:\n%s", out)
	}
	if RadiusPlot(states, 40, 5) == "" {
		t.Error("expected a radius plot")
	}
}

func TestDisplacementPlot(t *testing.T) {
	out := DisplacementPlot(fea.DisplacementField{0, 0.5, 0.75, 1.25}, 40, 6)
	if !strings.Contains(out, "max |u| = 1.25 at node 3") {
		t.Errorf("caption missing from plot:\n%s", out)
	}
	if DisplacementPlot(nil, 40, 6) != "" {
		t.Error("empty field should render nothing")
	}
}

func TestModesPlot(t *testing.T) {
	out := ModesPlot([][]float64{{0, 0.7, 1}, {0, 1, -1}}, []float64{1.5, 4.5}, 30, 6)
	if !strings.Contains(out, "1=1.5 Hz") || !strings.Contains(out, "2=4.5 Hz") {
		t.Errorf("frequencies missing from caption:\n%s", out)
	}
}

func TestSparkline(t *testing.T) {
	if got := []rune(Sparkline([]float64{1, 2, 3}, 3)); len(got) < 3 {
		t.Errorf("expected at least 3 runes, got %q", string(got))
	}
	if Sparkline(nil, 4) != "────" {
		t.Error("empty sparkline should be a rule")
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m tea.Model, keys ...string) tea.Model {
	t.Helper()
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = m.Update(key(k))
		if cmd != nil {
			if msg, ok := cmd().(solvedMsg); ok {
				m, _ = m.Update(msg)
			}
		}
	}
	return m
}

func TestBrowserSolveAndSave(t *testing.T) {
	store := storage.New(t.TempDir())
	var m tea.Model = newBrowser(store)

	// presets are sorted: fixed-fixed, fixed-free, settlement, springs, stepped
	m = press(t, m, "j", "j", "j", "enter")
	b := m.(browser)
	if b.state != stateConfig || b.problem.Name != "springs" {
		t.Fatalf("expected springs config, got state %d problem %v", b.state, b.problem)
	}
	if len(b.params) != 2 {
		t.Errorf("fixed mesh should only offer load scale and modes, got %v", b.params)
	}

	m = press(t, m, "l", "s")
	b = m.(browser)
	if b.state != stateResult || b.err != nil {
		t.Fatalf("expected a result, got state %d err %v", b.state, b.err)
	}
	if tip := b.outcome.Result.Displacements[3]; math.Abs(tip-1.375) > 1e-9 {
		t.Errorf("expected scaled tip 1.375, got %g", tip)
	}
	if f := b.problem.Loads[3]; f != 50 {
		t.Errorf("load scale leaked into the preset copy: %g", f)
	}

	m = press(t, m, "w")
	b = m.(browser)
	if b.saved == "" {
		t.Fatal("expected the run to be saved")
	}
	if !strings.Contains(b.View(), b.saved) {
		t.Error("view should show the saved run id")
	}
	runs, err := store.List()
	if err != nil || len(runs) != 1 {
		t.Errorf("expected one stored run, got %d (%v)", len(runs), err)
	}
}

func TestBrowserAdjustElements(t *testing.T) {
	var m tea.Model = newBrowser(nil)
	m = press(t, m, "j", "enter", "l", "l")
	b := m.(browser)
	if b.problem.Name != "fixed-free" || b.problem.Elements != 12 {
		t.Fatalf("expected fixed-free with 12 elements, got %s/%d", b.problem.Name, b.problem.Elements)
	}

	m = press(t, m, "esc")
	if m.(browser).state != stateMenu {
		t.Error("esc should return to the menu")
	}
	if !strings.Contains(m.View(), "fixed-free") {
		t.Error("menu should list presets")
	}
}

func TestBrowserShowsErrors(t *testing.T) {
	var m tea.Model = newBrowser(nil)
	m = press(t, m, "enter")
	m, _ = m.Update(solvedMsg{err: fea.ErrSingularSystem})

	b := m.(browser)
	if b.state != stateResult {
		t.Fatalf("expected result state, got %d", b.state)
	}
	if !strings.Contains(b.View(), "singular system") {
		t.Errorf("error not shown:\n%s", b.View())
	}
	// saving without an outcome or store is a no-op
	m = press(t, m, "w")
	if m.(browser).saved != "" {
		t.Error("nothing should be saved")
	}
}
