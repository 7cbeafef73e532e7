package fea

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Loads maps node index to applied axial force. Absent nodes carry no load.
type Loads map[int]float64

// Constraint prescribes the displacement of one node.
type Constraint struct {
	Node  int     `json:"node" yaml:"node"`
	Value float64 `json:"value" yaml:"value"`
}

// Fixed returns a zero-displacement constraint on node.
func Fixed(node int) Constraint {
	return Constraint{Node: node}
}

// DisplacementField holds one axial displacement per node.
type DisplacementField []float64

// MaxAbs returns the node with the largest displacement magnitude and its value.
func (d DisplacementField) MaxAbs() (int, float64) {
	node, best := 0, 0.0
	for i, v := range d {
		if math.Abs(v) > math.Abs(best) {
			node, best = i, v
		}
	}
	return node, best
}

// Result is a solved bar with recovered internal forces.
type Result struct {
	Displacements DisplacementField `json:"displacements"`
	// Reactions holds the support force at each constrained node, K*u - F.
	Reactions map[int]float64 `json:"reactions"`
	// ElementForces holds the axial force of each element, positive in tension.
	ElementForces []float64 `json:"element_forces"`
	Strains       []float64 `json:"strains"`
}

// Stresses divides the element forces by a uniform cross-section area.
func (r *Result) Stresses(area float64) []float64 {
	s := make([]float64, len(r.ElementForces))
	for i, f := range r.ElementForces {
		s[i] = f / area
	}
	return s
}

// Solve computes the static nodal displacements of the bar.
//
// The global stiffness matrix is assembled from stiffness[i]*[[1,-1],[-1,1]]
// blocks, constrained rows and columns are eliminated (moving K[f,c]*d to the
// right-hand side for non-zero prescribed values) and the reduced system is
// solved by Cholesky factorization.
func Solve(mesh Mesh, stiffness []float64, loads Loads, constraints []Constraint) (DisplacementField, error) {
	sys, err := newSystem(mesh, stiffness, loads, constraints)
	if err != nil {
		return nil, err
	}
	return sys.solve()
}

// Analyze solves the bar like Solve and recovers reactions, element forces
// and strains.
func Analyze(mesh Mesh, stiffness []float64, loads Loads, constraints []Constraint) (*Result, error) {
	sys, err := newSystem(mesh, stiffness, loads, constraints)
	if err != nil {
		return nil, err
	}
	u, err := sys.solve()
	if err != nil {
		return nil, err
	}

	n := len(u)
	res := &Result{
		Displacements: u,
		Reactions:     make(map[int]float64, len(sys.fixed)),
		ElementForces: make([]float64, n-1),
		Strains:       make([]float64, n-1),
	}
	for _, c := range sys.fixed {
		r := -sys.f[c.Node]
		for j := 0; j < n; j++ {
			r += sys.k.At(c.Node, j) * u[j]
		}
		res.Reactions[c.Node] = r
	}
	for e := 0; e < n-1; e++ {
		du := u[e+1] - u[e]
		res.ElementForces[e] = stiffness[e] * du
		res.Strains[e] = du / mesh.ElementLength(e)
	}
	return res, nil
}

// Assemble returns the global (N+1)x(N+1) stiffness matrix of the bar.
func Assemble(mesh Mesh, stiffness []float64) (*mat.SymDense, error) {
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	if err := validateElementValues(mesh, stiffness, ErrInvalidStiffness); err != nil {
		return nil, err
	}
	return assemble(mesh.Nodes(), stiffness, [2][2]float64{{1, -1}, {-1, 1}}), nil
}

// assemble scatters scale[e]*local into rows and columns {e, e+1}.
func assemble(nodes int, scale []float64, local [2][2]float64) *mat.SymDense {
	g := mat.NewSymDense(nodes, nil)
	for e, s := range scale {
		for a := 0; a < 2; a++ {
			for b := a; b < 2; b++ {
				i, j := e+a, e+b
				g.SetSym(i, j, g.At(i, j)+s*local[a][b])
			}
		}
	}
	return g
}

type system struct {
	k     *mat.SymDense
	f     []float64
	fixed []Constraint // sorted by node
	free  []int
}

func newSystem(mesh Mesh, stiffness []float64, loads Loads, constraints []Constraint) (*system, error) {
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	if err := validateElementValues(mesh, stiffness, ErrInvalidStiffness); err != nil {
		return nil, err
	}
	n := mesh.Nodes()
	if err := validateLoads(n, loads); err != nil {
		return nil, err
	}
	fixed, err := validateConstraints(n, constraints)
	if err != nil {
		return nil, err
	}

	sys := &system{
		k:     assemble(n, stiffness, [2][2]float64{{1, -1}, {-1, 1}}),
		f:     make([]float64, n),
		fixed: fixed,
		free:  freeNodes(n, fixed),
	}
	for node, force := range loads {
		sys.f[node] = force
	}
	return sys, nil
}

func (s *system) solve() (DisplacementField, error) {
	u := make(DisplacementField, len(s.f))
	for _, c := range s.fixed {
		u[c.Node] = c.Value
	}
	nf := len(s.free)
	if nf == 0 {
		return u, nil
	}

	kff := reduce(s.k, s.free)
	rhs := mat.NewVecDense(nf, s.rhs())

	var chol mat.Cholesky
	if ok := chol.Factorize(kff); !ok {
		return nil, fmt.Errorf("%w: reduced stiffness matrix is not positive definite", ErrSingularSystem)
	}
	if cond := chol.Cond(); cond > mat.ConditionTolerance {
		return nil, fmt.Errorf("%w: condition number %.3g", ErrSingularSystem, cond)
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, rhs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}

	for a, i := range s.free {
		u[i] = x.AtVec(a)
	}
	return u, nil
}

// rhs returns F[f] - K[f,c]*d for the free nodes.
func (s *system) rhs() []float64 {
	out := make([]float64, len(s.free))
	for a, i := range s.free {
		r := s.f[i]
		for _, c := range s.fixed {
			r -= s.k.At(i, c.Node) * c.Value
		}
		out[a] = r
	}
	return out
}

func validateElementValues(mesh Mesh, values []float64, kind error) error {
	if len(values) != mesh.Elements() {
		return fmt.Errorf("%w: %d values for %d elements", ErrDimensionMismatch, len(values), mesh.Elements())
	}
	for i, v := range values {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: element %d has %g", kind, i, v)
		}
	}
	return nil
}

func validateLoads(nodes int, loads Loads) error {
	for node, force := range loads {
		if node < 0 || node >= nodes {
			return fmt.Errorf("%w: node %d outside [0, %d]", ErrInvalidLoad, node, nodes-1)
		}
		if math.IsNaN(force) || math.IsInf(force, 0) {
			return fmt.Errorf("%w: node %d force is not finite", ErrInvalidLoad, node)
		}
	}
	return nil
}

// validateConstraints returns a sorted copy of constraints.
func validateConstraints(nodes int, constraints []Constraint) ([]Constraint, error) {
	if len(constraints) == 0 {
		return nil, fmt.Errorf("%w: at least one constraint is required", ErrInvalidConstraint)
	}
	fixed := make([]Constraint, len(constraints))
	copy(fixed, constraints)
	sort.Slice(fixed, func(i, j int) bool { return fixed[i].Node < fixed[j].Node })

	for i, c := range fixed {
		if c.Node < 0 || c.Node >= nodes {
			return nil, fmt.Errorf("%w: node %d outside [0, %d]", ErrInvalidConstraint, c.Node, nodes-1)
		}
		if i > 0 && fixed[i-1].Node == c.Node {
			return nil, fmt.Errorf("%w: node %d constrained twice", ErrInvalidConstraint, c.Node)
		}
		if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
			return nil, fmt.Errorf("%w: node %d value is not finite", ErrInvalidConstraint, c.Node)
		}
	}
	return fixed, nil
}

func freeNodes(nodes int, fixed []Constraint) []int {
	free := make([]int, 0, nodes-len(fixed))
	j := 0
	for i := 0; i < nodes; i++ {
		if j < len(fixed) && fixed[j].Node == i {
			j++
			continue
		}
		free = append(free, i)
	}
	return free
}
