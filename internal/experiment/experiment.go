package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/barfea/internal/config"
	"github.com/san-kum/barfea/internal/fea"
)

// Outcome is one analysed bar.
type Outcome struct {
	Problem *config.Problem
	Mesh    fea.Mesh
	Result  *fea.Result
	Modal   *fea.ModalResult // nil when the problem asks for no modes
	Elapsed time.Duration
}

type Experiment struct {
	problem *config.Problem
}

// New takes a copy of p; later edits to p do not affect the experiment.
func New(p *config.Problem) *Experiment {
	return &Experiment{problem: p.Clone()}
}

// Run solves the bar statically and, when Modes > 0, for its lowest modes.
func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	p := e.problem

	mesh, err := p.Mesh()
	if err != nil {
		return nil, err
	}
	stiffness := p.ElementStiffness(mesh)
	constraints := p.FEAConstraints()

	res, err := fea.Analyze(mesh, stiffness, p.FEALoads(), constraints)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Problem: p, Mesh: mesh, Result: res}

	if p.Modes > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		modal, err := fea.Modes(mesh, stiffness, p.ElementMasses(mesh), constraints, p.Modes)
		if err != nil {
			return nil, fmt.Errorf("modes: %w", err)
		}
		out.Modal = modal
	}

	out.Elapsed = time.Since(start)
	return out, nil
}
