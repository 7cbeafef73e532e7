package fea

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ModalResult holds the free-vibration modes of a bar, lowest first.
type ModalResult struct {
	// Omega holds the natural angular frequencies in rad/s.
	Omega []float64 `json:"omega"`
	// Hz holds the natural frequencies in cycles per second.
	Hz []float64 `json:"hz"`
	// Shapes[i] is the mass-normalized shape of mode i, one value per node,
	// zero at constrained nodes.
	Shapes [][]float64 `json:"shapes"`
}

// Modes solves K*phi = omega^2*M*phi for the bar with the consistent mass
// matrix m_e/6*[[2,1],[1,2]]. Constrained nodes are held at zero; their
// prescribed values do not enter a free-vibration problem. count <= 0
// returns every mode.
func Modes(mesh Mesh, stiffness, masses []float64, constraints []Constraint, count int) (*ModalResult, error) {
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	if err := validateElementValues(mesh, stiffness, ErrInvalidStiffness); err != nil {
		return nil, err
	}
	if err := validateElementValues(mesh, masses, ErrInvalidMass); err != nil {
		return nil, err
	}
	n := mesh.Nodes()
	fixed, err := validateConstraints(n, constraints)
	if err != nil {
		return nil, err
	}
	free := freeNodes(n, fixed)
	nf := len(free)
	if nf == 0 {
		return &ModalResult{}, nil
	}

	k := assemble(n, stiffness, [2][2]float64{{1, -1}, {-1, 1}})
	m := assemble(n, masses, [2][2]float64{{2.0 / 6, 1.0 / 6}, {1.0 / 6, 2.0 / 6}})
	kff := reduce(k, free)
	mff := reduce(m, free)

	// M = L*L^T turns the generalized problem into A*psi = lambda*psi with
	// A = L^-1*K*L^-T and phi = L^-T*psi.
	var chol mat.Cholesky
	if ok := chol.Factorize(mff); !ok {
		return nil, fmt.Errorf("%w: mass matrix is not positive definite", ErrSingularSystem)
	}
	var l mat.TriDense
	chol.LTo(&l)
	var linv mat.Dense
	if err := linv.Inverse(&l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}

	var tmp, a mat.Dense
	tmp.Mul(&linv, kff)
	a.Mul(&tmp, linv.T())
	sym := mat.NewSymDense(nf, nil)
	for i := 0; i < nf; i++ {
		for j := i; j < nf; j++ {
			sym.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, fmt.Errorf("%w: eigendecomposition did not converge", ErrSingularSystem)
	}
	lambda := eig.Values(nil)
	var psi, phi mat.Dense
	eig.VectorsTo(&psi)
	phi.Mul(linv.T(), &psi)

	if count <= 0 || count > nf {
		count = nf
	}
	res := &ModalResult{
		Omega:  make([]float64, count),
		Hz:     make([]float64, count),
		Shapes: make([][]float64, count),
	}
	for i := 0; i < count; i++ {
		w := math.Sqrt(math.Max(lambda[i], 0))
		res.Omega[i] = w
		res.Hz[i] = w / (2 * math.Pi)

		shape := make([]float64, n)
		peak := 0.0
		for r, node := range free {
			shape[node] = phi.At(r, i)
			if math.Abs(shape[node]) > math.Abs(peak) {
				peak = shape[node]
			}
		}
		if peak < 0 {
			for j := range shape {
				shape[j] = -shape[j]
			}
		}
		res.Shapes[i] = shape
	}
	return res, nil
}

func reduce(g *mat.SymDense, free []int) *mat.SymDense {
	r := mat.NewSymDense(len(free), nil)
	for a, i := range free {
		for b := a; b < len(free); b++ {
			r.SetSym(a, b, g.At(i, free[b]))
		}
	}
	return r
}
