// Package fea implements a static finite-element model of a 1-D axial bar.
//
// A bar is described by:
//
//   - [Mesh]: strictly increasing node positions starting at 0
//   - element stiffness: one axial stiffness per element, see [AxialStiffness]
//   - [Loads]: nodal forces keyed by node index
//   - [Constraint]: prescribed nodal displacements
//
// [Solve] assembles the global stiffness matrix, eliminates the constrained
// degrees of freedom and returns the nodal [DisplacementField]. [Analyze]
// additionally recovers support reactions and element forces, and [Modes]
// computes the free-vibration modes of the same bar.
//
// # Example
//
//	mesh, _ := fea.UniformMesh(1.0, 10)
//	k := fea.AxialStiffness(mesh, 200e9, 1e-4)
//	u, err := fea.Solve(mesh, k, fea.Loads{10: -1000}, []fea.Constraint{{Node: 0}})
//
// # Thread Safety
//
// Every function in this package is a pure function of its arguments. Inputs
// are never modified, so independent calls may run concurrently.
package fea
