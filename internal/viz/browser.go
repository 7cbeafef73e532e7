package viz

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/barfea/internal/config"
	"github.com/san-kum/barfea/internal/experiment"
	"github.com/san-kum/barfea/internal/storage"
)

const (
	stateMenu = iota
	stateConfig
	stateResult
)

type solvedMsg struct {
	out *experiment.Outcome
	err error
}

type browser struct {
	state, cursor int
	presets       []string
	problem       *config.Problem
	loadScale     float64
	params        []string
	paramCursor   int
	outcome       *experiment.Outcome
	err           error
	store         *storage.Store
	saved         string
	width, height int
}

// newBrowser returns the preset browser model. store may be nil, which disables saving.
func newBrowser(store *storage.Store) *browser {
	return &browser{
		state:   stateMenu,
		presets: config.ListPresets(),
		store:   store,
		width:   80,
		height:  24,
	}
}

func (m browser) Init() tea.Cmd { return nil }

func (m browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case solvedMsg:
		m.outcome, m.err, m.saved = msg.out, msg.err, ""
		m.state = stateResult
	}
	return m, nil
}

func (m browser) handleKey(msg tea.KeyMsg) (browser, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateResult:
		return m.resultKey(msg)
	}
	return m, nil
}

func (m browser) menuKey(msg tea.KeyMsg) (browser, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.presets) == 0 {
			return m, nil
		}
		m.problem = config.GetPreset(m.presets[m.cursor])
		m.loadScale = 1
		m.params = []string{"load scale", "modes"}
		if len(m.problem.Nodes) == 0 {
			m.params = append([]string{"elements", "length"}, m.params...)
		}
		m.state, m.paramCursor = stateConfig, 0
	}
	return m, nil
}

func (m browser) configKey(msg tea.KeyMsg) (browser, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.params)-1 {
			m.paramCursor++
		}
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(1)
	case "enter", "s":
		return m, solveCmd(m.scaledProblem())
	}
	return m, nil
}

func (m browser) resultKey(msg tea.KeyMsg) (browser, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.state = stateConfig
	case "w":
		if m.store != nil && m.outcome != nil {
			id, err := m.store.Save(m.outcome)
			if err != nil {
				m.err = err
			} else {
				m.saved = id
			}
		}
	}
	return m, nil
}

func (m *browser) adjust(dir int) {
	p := m.problem
	switch m.params[m.paramCursor] {
	case "elements":
		p.Elements = max(1, p.Elements+dir)
		if p.Modes > p.Elements {
			p.Modes = p.Elements
		}
	case "length":
		p.Length *= math.Pow(1.1, float64(dir))
	case "load scale":
		m.loadScale = math.Round(10*(m.loadScale+0.1*float64(dir))) / 10
	case "modes":
		p.Modes = max(0, p.Modes+dir)
	}
}

func (m browser) scaledProblem() *config.Problem {
	p := m.problem.Clone()
	for node, f := range p.Loads {
		p.Loads[node] = f * m.loadScale
	}
	return p
}

func solveCmd(p *config.Problem) tea.Cmd {
	return func() tea.Msg {
		out, err := experiment.New(p).Run(context.Background())
		return solvedMsg{out: out, err: err}
	}
}

func (m browser) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateResult:
		return m.viewResult()
	}
	return ""
}

func (m browser) header(title, sub string) string {
	return "\n\n    " + Title.Render(title) + "\n    " + Subtle.Render(sub) + "\n    " + Separator(25) + "\n\n"
}

func (m browser) viewMenu() string {
	var b strings.Builder
	b.WriteString(m.header("BARFEA", "axial bar presets"))
	for i, name := range m.presets {
		p := config.Presets[name]
		desc := fmt.Sprintf("%d loads, %d constraints", len(p.Loads), len(p.Constraints))
		if i == m.cursor {
			fmt.Fprintf(&b, "    %s %s  %s\n", Marker.Render("▸"), Selected.Render(fmt.Sprintf("%-12s", name)), MetricValue.Render(desc))
		} else {
			fmt.Fprintf(&b, "    %s  %s\n", Unselected.Render(fmt.Sprintf("  %-12s", name)), Subtle.Render(desc))
		}
	}
	b.WriteString("\n    " + KeyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m browser) paramValue(name string) string {
	switch name {
	case "elements":
		return fmt.Sprintf("%8d", m.problem.Elements)
	case "length":
		return fmt.Sprintf("%8.3f", m.problem.Length)
	case "load scale":
		return fmt.Sprintf("%8.1f", m.loadScale)
	case "modes":
		return fmt.Sprintf("%8d", m.problem.Modes)
	}
	return ""
}

func (m browser) viewConfig() string {
	var b strings.Builder
	sub := "uniform mesh"
	if len(m.problem.Nodes) > 0 {
		sub = fmt.Sprintf("fixed mesh, %d nodes", len(m.problem.Nodes))
	}
	b.WriteString(m.header(strings.ToUpper(m.problem.Name), sub))
	for i, name := range m.params {
		val := m.paramValue(name)
		if i == m.paramCursor {
			fmt.Fprintf(&b, "    %s %s %s\n", Marker.Render("▸"), Selected.Render(fmt.Sprintf("%-10s", name)), MetricValue.Render(val))
		} else {
			fmt.Fprintf(&b, "    %s %s\n", Unselected.Render(fmt.Sprintf("  %-10s", name)), Subtle.Render(val))
		}
	}
	b.WriteString("\n    " + KeyHints("j/k", "select", "h/l", "adjust", "s", "solve", "esc", "back") + "\n")
	return b.String()
}

func (m browser) viewResult() string {
	var b strings.Builder
	b.WriteString(m.header(strings.ToUpper(m.problem.Name), "static solution"))
	if m.err != nil {
		b.WriteString("    " + ErrorText.Render(m.err.Error()) + "\n\n")
		b.WriteString("    " + KeyHints("esc", "back") + "\n")
		return b.String()
	}

	out := m.outcome
	b.WriteString(Panel.Render(Summary(out)) + "\n\n")
	width := max(20, m.width-20)
	b.WriteString(DisplacementPlot(out.Result.Displacements, width, 8) + "\n\n")
	b.WriteString("    " + MetricLabel.Render("element forces ") + Sparkline(out.Result.ElementForces, min(width, len(out.Result.ElementForces))) + "\n\n")
	if m.saved != "" {
		b.WriteString("    " + MetricLabel.Render("saved as ") + MetricValue.Render(m.saved) + "\n\n")
	}

	hints := []string{"esc", "back", "ctrl+c", "quit"}
	if m.store != nil {
		hints = append([]string{"w", "save"}, hints...)
	}
	b.WriteString("    " + KeyHints(hints...) + "\n")
	return b.String()
}

// RunBrowser starts the browser on the alternate screen.
func RunBrowser(store *storage.Store) error {
	_, err := tea.NewProgram(newBrowser(store), tea.WithAltScreen()).Run()
	return err
}
