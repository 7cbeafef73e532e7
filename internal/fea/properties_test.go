package fea_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/barfea/internal/fea"
)

var _ = Describe("Solve", func() {
	var (
		mesh      fea.Mesh
		stiffness []float64
	)

	BeforeEach(func() {
		var err error
		mesh, err = fea.UniformMesh(4, 8)
		Expect(err).NotTo(HaveOccurred())
		stiffness = fea.AxialStiffness(mesh, 210e9, 5e-4)
	})

	DescribeTable("keeps a single constrained node at its prescribed value",
		func(node int, value float64) {
			u, err := fea.Solve(mesh, stiffness, nil, []fea.Constraint{{Node: node, Value: value}})
			Expect(err).NotTo(HaveOccurred())
			Expect(u).To(HaveLen(mesh.Nodes()))
			Expect(u[node]).To(Equal(value))
		},
		Entry("left end at zero", 0, 0.0),
		Entry("left end shifted", 0, 0.003),
		Entry("interior node", 4, -0.01),
		Entry("right end", 8, 1.5),
	)

	It("translates rigidly when only the prescribed value loads the bar", func() {
		u, err := fea.Solve(mesh, stiffness, nil, []fea.Constraint{{Node: 3, Value: 0.2}})
		Expect(err).NotTo(HaveOccurred())
		for _, v := range u {
			Expect(v).To(BeNumerically("~", 0.2, 1e-12))
		}
	})

	It("is symmetric for a symmetric bar", func() {
		sym := []float64{1, 2, 3, 4, 4, 3, 2, 1}
		loads := fea.Loads{2: 5, 6: 5, 4: -3}
		constraints := []fea.Constraint{fea.Fixed(0), fea.Fixed(8)}

		u, err := fea.Solve(mesh, sym, loads, constraints)
		Expect(err).NotTo(HaveOccurred())
		for i := range u {
			Expect(u[i]).To(BeNumerically("~", u[len(u)-1-i], 1e-12))
		}
	})

	It("returns bit-identical results on repeated calls", func() {
		loads := fea.Loads{8: -1e4, 3: 250}
		constraints := []fea.Constraint{fea.Fixed(0)}

		first, err := fea.Solve(mesh, stiffness, loads, constraints)
		Expect(err).NotTo(HaveOccurred())
		second, err := fea.Solve(mesh, stiffness, loads, constraints)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(first))
	})

	It("rejects a bar with no constraints", func() {
		_, err := fea.Solve(mesh, stiffness, fea.Loads{8: 1}, nil)
		Expect(err).To(MatchError(fea.ErrInvalidConstraint))
	})

	It("rejects element data of the wrong length", func() {
		_, err := fea.Solve(mesh, stiffness[:5], nil, []fea.Constraint{fea.Fixed(0)})
		Expect(err).To(MatchError(fea.ErrDimensionMismatch))
	})

	It("grows linearly away from the fixed end under a tip load", func() {
		const k, f = 7.0, -3.5
		uniform := make([]float64, mesh.Elements())
		for i := range uniform {
			uniform[i] = k
		}
		u, err := fea.Solve(mesh, uniform, fea.Loads{8: f}, []fea.Constraint{fea.Fixed(0)})
		Expect(err).NotTo(HaveOccurred())
		Expect(u[0]).To(BeZero())
		for i := 1; i < len(u); i++ {
			Expect(u[i]).To(BeNumerically("~", f*float64(i)/k, 1e-12))
			Expect(math.Abs(u[i])).To(BeNumerically(">", math.Abs(u[i-1])))
		}
	})
})

var _ = Describe("Analyze", func() {
	It("reports a reaction equal and opposite to the tip load", func() {
		mesh, _ := fea.UniformMesh(1, 4)
		res, err := fea.Analyze(mesh, []float64{1, 1, 1, 1}, fea.Loads{4: 9}, []fea.Constraint{fea.Fixed(0)})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Reactions).To(HaveKeyWithValue(0, BeNumerically("~", -9, 1e-12)))
		Expect(res.ElementForces).To(HaveEach(BeNumerically("~", 9, 1e-12)))
	})
})
