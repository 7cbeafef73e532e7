package fea

import (
	"fmt"
	"math"
)

// Mesh holds the node positions of a bar. Element i connects nodes i and i+1.
type Mesh []float64

// NewMesh copies positions into a Mesh and validates it.
func NewMesh(positions []float64) (Mesh, error) {
	m := make(Mesh, len(positions))
	copy(m, positions)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// UniformMesh divides [0, length] into n elements of equal length.
func UniformMesh(length float64, n int) (Mesh, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least one element, got %d", ErrInvalidMesh, n)
	}
	if !(length > 0) || math.IsInf(length, 0) {
		return nil, fmt.Errorf("%w: length must be positive and finite, got %g", ErrInvalidMesh, length)
	}
	m := make(Mesh, n+1)
	h := length / float64(n)
	for i := 1; i < n; i++ {
		m[i] = float64(i) * h
	}
	m[n] = length
	return m, nil
}

// Validate checks N >= 1, m[0] == 0 and strictly increasing finite positions.
func (m Mesh) Validate() error {
	if len(m) < 2 {
		return fmt.Errorf("%w: need at least 2 nodes, got %d", ErrInvalidMesh, len(m))
	}
	if m[0] != 0 {
		return fmt.Errorf("%w: first node must be at 0, got %g", ErrInvalidMesh, m[0])
	}
	for i := 1; i < len(m); i++ {
		if math.IsNaN(m[i]) || math.IsInf(m[i], 0) {
			return fmt.Errorf("%w: node %d is not finite", ErrInvalidMesh, i)
		}
		if m[i] <= m[i-1] {
			return fmt.Errorf("%w: node %d at %g does not follow node %d at %g", ErrInvalidMesh, i, m[i], i-1, m[i-1])
		}
	}
	return nil
}

func (m Mesh) Nodes() int    { return len(m) }
func (m Mesh) Elements() int { return len(m) - 1 }

// ElementLength returns the length of element i.
func (m Mesh) ElementLength(i int) float64 {
	return m[i+1] - m[i]
}

// Length returns the total bar length.
func (m Mesh) Length() float64 {
	if len(m) == 0 {
		return 0
	}
	return m[len(m)-1] - m[0]
}

// Section describes a homogeneous prismatic bar.
type Section struct {
	Modulus float64 // Young's modulus E
	Area    float64 // cross-section area A
	Density float64 // mass density rho
}

// AxialStiffness returns E*A/L_e for every element of the mesh.
func AxialStiffness(m Mesh, modulus, area float64) []float64 {
	k := make([]float64, m.Elements())
	for i := range k {
		k[i] = modulus * area / m.ElementLength(i)
	}
	return k
}

// ElementMasses returns rho*A*L_e for every element of the mesh.
func ElementMasses(m Mesh, density, area float64) []float64 {
	ms := make([]float64, m.Elements())
	for i := range ms {
		ms[i] = density * area * m.ElementLength(i)
	}
	return ms
}

// Stiffness is AxialStiffness for the section.
func (s Section) Stiffness(m Mesh) []float64 {
	return AxialStiffness(m, s.Modulus, s.Area)
}

// Masses is ElementMasses for the section.
func (s Section) Masses(m Mesh) []float64 {
	return ElementMasses(m, s.Density, s.Area)
}

// TipDisplacement is the closed-form tip displacement F*L/(E*A) of a uniform
// bar fixed at one end and loaded axially at the other.
func TipDisplacement(force, length, modulus, area float64) float64 {
	return force * length / (modulus * area)
}
