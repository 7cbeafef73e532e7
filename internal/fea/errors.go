package fea

import "errors"

// Validation and numerical errors. Returned errors wrap one of these with
// context; match them with errors.Is.
var (
	// ErrInvalidMesh indicates fewer than two nodes, a first node away from
	// the origin, or positions that are not finite and strictly increasing.
	ErrInvalidMesh = errors.New("fea: invalid mesh")

	// ErrDimensionMismatch indicates a per-element slice whose length is not
	// the number of elements.
	ErrDimensionMismatch = errors.New("fea: dimension mismatch between mesh and element data")

	// ErrInvalidStiffness indicates a non-positive or non-finite element stiffness.
	ErrInvalidStiffness = errors.New("fea: invalid element stiffness")

	// ErrInvalidMass indicates a non-positive or non-finite element mass.
	ErrInvalidMass = errors.New("fea: invalid element mass")

	// ErrInvalidLoad indicates a load on a node outside the mesh or a
	// non-finite force.
	ErrInvalidLoad = errors.New("fea: invalid load")

	// ErrInvalidConstraint indicates an empty constraint set, a node outside
	// the mesh, a node constrained twice, or a non-finite prescribed value.
	ErrInvalidConstraint = errors.New("fea: invalid constraint")

	// ErrSingularSystem indicates the reduced system could not be solved,
	// usually because the constraints leave a rigid-body mode.
	ErrSingularSystem = errors.New("fea: singular system")
)
