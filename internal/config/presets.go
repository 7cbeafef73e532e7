package config

import (
	"sort"

	"github.com/san-kum/barfea/internal/fea"
)

var Presets = map[string]*Problem{
	// original demo: steel rod clamped at x=0, pulled at the tip
	"fixed-free": {
		Name: "fixed-free", Length: 1.0, Elements: 10,
		Modulus: 200e9, Area: 1e-4, Density: 7850,
		Loads:       map[int]float64{10: 1000},
		Constraints: []fea.Constraint{{Node: 0}},
		Modes:       3,
	},
	"fixed-fixed": {
		Name: "fixed-fixed", Length: 2.0, Elements: 20,
		Modulus: 70e9, Area: 5e-4, Density: 2700,
		Loads:       map[int]float64{10: -5000},
		Constraints: []fea.Constraint{{Node: 0}, {Node: 20}},
		Modes:       4,
	},
	"stepped": {
		Name: "stepped", Nodes: []float64{0, 0.5, 1.0, 1.25, 1.5},
		Modulus: 200e9, Area: 2e-4, Density: 7850,
		Stiffness:   []float64{8e7, 8e7, 4e7, 4e7},
		Loads:       map[int]float64{2: 2000, 4: -500},
		Constraints: []fea.Constraint{{Node: 0}},
		Modes:       2,
	},
	"settlement": {
		Name: "settlement", Length: 3.0, Elements: 6,
		Modulus: 30e9, Area: 0.09, Density: 2400,
		Loads:       map[int]float64{3: -1.5e5},
		Constraints: []fea.Constraint{{Node: 0}, {Node: 6, Value: -0.0005}},
		Modes:       2,
	},
	"springs": {
		Name: "springs", Nodes: []float64{0, 1, 2, 3},
		Modulus: 1, Area: 1, Density: 1,
		Stiffness:   []float64{100, 200, 100},
		Loads:       map[int]float64{3: 50},
		Constraints: []fea.Constraint{{Node: 0}},
		Modes:       3,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Problem {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
