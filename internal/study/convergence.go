package study

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/barfea/internal/config"
	"github.com/san-kum/barfea/internal/experiment"
)

var ErrNotRefinable = errors.New("study: problem cannot be refined")

// Point is one mesh of a convergence study.
type Point struct {
	Elements int
	MaxNode  int
	MaxAbs   float64
	Omega1   float64 // zero when the problem asks for no modes
	// Change is the relative change of MaxAbs and Omega1 (the larger of the
	// two) against the previous, coarser mesh; zero for the first point.
	Change float64
}

// Convergence solves a uniform-mesh problem once per element count, in
// parallel. Every count must be a multiple of p.Elements; loads and
// constraints move to the node at the same position on the finer mesh.
// Points come back in the order of counts.
func Convergence(ctx context.Context, p *config.Problem, counts []int) ([]Point, error) {
	if len(p.Nodes) > 0 || len(p.Stiffness) > 0 {
		return nil, fmt.Errorf("%w: needs a uniform mesh with a section", ErrNotRefinable)
	}
	problems := make([]*config.Problem, len(counts))
	for i, n := range counts {
		fine, err := Refine(p, n)
		if err != nil {
			return nil, err
		}
		problems[i] = fine
	}

	outs := make([]*experiment.Outcome, len(problems))
	errs := make([]error, len(problems))

	var wg sync.WaitGroup
	for i := range problems {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			outs[idx], errs[idx] = experiment.New(problems[idx]).Run(ctx)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%d elements: %w", counts[i], err)
		}
	}

	points := make([]Point, len(outs))
	for i, out := range outs {
		node, peak := out.Result.Displacements.MaxAbs()
		points[i] = Point{Elements: counts[i], MaxNode: node, MaxAbs: math.Abs(peak)}
		if out.Modal != nil && len(out.Modal.Omega) > 0 {
			points[i].Omega1 = out.Modal.Omega[0]
		}
		if i > 0 {
			points[i].Change = max(relChange(points[i-1].MaxAbs, points[i].MaxAbs),
				relChange(points[i-1].Omega1, points[i].Omega1))
		}
	}
	return points, nil
}

// Refine returns a copy of p on n uniform elements with loads and
// constraints moved to the matching nodes.
func Refine(p *config.Problem, n int) (*config.Problem, error) {
	if p.Elements <= 0 || n <= 0 || n%p.Elements != 0 {
		return nil, fmt.Errorf("%w: %d elements is not a multiple of %d", ErrNotRefinable, n, p.Elements)
	}
	factor := n / p.Elements

	fine := p.Clone()
	fine.Elements = n
	fine.Loads = make(map[int]float64, len(p.Loads))
	for node, f := range p.Loads {
		fine.Loads[node*factor] += f
	}
	for i := range fine.Constraints {
		fine.Constraints[i].Node *= factor
	}
	return fine, nil
}

func relChange(prev, cur float64) float64 {
	if cur == 0 {
		return 0
	}
	return math.Abs(cur-prev) / math.Abs(cur)
}
