package config

import (
	"fmt"
	"os"

	"github.com/san-kum/barfea/internal/fea"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLength   = 1.0
	DefaultElements = 10
	DefaultModulus  = 200e9 // steel, Pa
	DefaultArea     = 1e-4  // m^2
	DefaultDensity  = 7850  // kg/m^3
	DefaultModes    = 3
)

// Problem describes a bar analysis as read from a YAML file or an HTTP body.
//
// The mesh is Nodes when given, otherwise Elements equal elements over
// Length. Element stiffness is Stiffness when given, otherwise
// Modulus*Area/L_e.
type Problem struct {
	Name        string           `yaml:"name" json:"name"`
	Length      float64          `yaml:"length" json:"length"`
	Elements    int              `yaml:"elements" json:"elements"`
	Nodes       []float64        `yaml:"nodes,omitempty" json:"nodes,omitempty"`
	Modulus     float64          `yaml:"modulus" json:"modulus"`
	Area        float64          `yaml:"area" json:"area"`
	Density     float64          `yaml:"density" json:"density"`
	Stiffness   []float64        `yaml:"stiffness,omitempty" json:"stiffness,omitempty"`
	Loads       map[int]float64  `yaml:"loads" json:"loads"`
	Constraints []fea.Constraint `yaml:"constraints" json:"constraints"`
	Modes       int              `yaml:"modes" json:"modes"`
}

// DefaultProblem returns the material and mesh defaults. It carries no loads
// and no constraints.
func DefaultProblem() *Problem {
	return &Problem{
		Name:     "bar",
		Length:   DefaultLength,
		Elements: DefaultElements,
		Modulus:  DefaultModulus,
		Area:     DefaultArea,
		Density:  DefaultDensity,
		Modes:    DefaultModes,
	}
}

// Load reads a problem file on top of DefaultProblem.
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML (or JSON, a YAML subset) on top of DefaultProblem.
func Parse(data []byte) (*Problem, error) {
	p := DefaultProblem()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse problem: %w", err)
	}
	return p, nil
}

func Save(path string, p *Problem) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so presets can be edited safely.
func (p *Problem) Clone() *Problem {
	c := *p
	c.Nodes = append([]float64(nil), p.Nodes...)
	c.Stiffness = append([]float64(nil), p.Stiffness...)
	c.Constraints = append([]fea.Constraint(nil), p.Constraints...)
	if p.Loads != nil {
		c.Loads = make(map[int]float64, len(p.Loads))
		for k, v := range p.Loads {
			c.Loads[k] = v
		}
	}
	return &c
}

func (p *Problem) Mesh() (fea.Mesh, error) {
	if len(p.Nodes) > 0 {
		return fea.NewMesh(p.Nodes)
	}
	return fea.UniformMesh(p.Length, p.Elements)
}

func (p *Problem) Section() fea.Section {
	return fea.Section{Modulus: p.Modulus, Area: p.Area, Density: p.Density}
}

func (p *Problem) ElementStiffness(mesh fea.Mesh) []float64 {
	if len(p.Stiffness) > 0 {
		return append([]float64(nil), p.Stiffness...)
	}
	return p.Section().Stiffness(mesh)
}

func (p *Problem) ElementMasses(mesh fea.Mesh) []float64 {
	return p.Section().Masses(mesh)
}

func (p *Problem) FEALoads() fea.Loads {
	loads := make(fea.Loads, len(p.Loads))
	for node, f := range p.Loads {
		loads[node] = f
	}
	return loads
}

func (p *Problem) FEAConstraints() []fea.Constraint {
	return append([]fea.Constraint(nil), p.Constraints...)
}
