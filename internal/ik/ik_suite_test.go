package ik_test

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/armkin/internal/ik"
)

func TestIK(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "IK Suite")
}

func solverFor(n int, relations map[int]ik.Relation, cfg ik.Config) *ik.Solver {
	red, err := ik.NewReducer(n, relations)
	Expect(err).NotTo(HaveOccurred())
	s, err := ik.New(red, cfg)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func apply(jac mat.Matrix, qdot []float64) []float64 {
	rows, cols := jac.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i] += jac.At(i, j) * qdot[j]
		}
	}
	return out
}

var _ = Describe("pseudo-inverse solver", func() {
	var jac *mat.Dense

	BeforeEach(func() {
		// A redundant 7-dof Jacobian with full row rank.
		jac = mat.NewDense(6, 7, []float64{
			1, 0, 0, 0.5, 0, 0.2, 0,
			0, 1, 0, 0, 0.5, 0, 0.2,
			0, 0, 1, 0.3, 0, 0, 0,
			0.1, 0, 0, 1, 0, 0.4, 0,
			0, 0.1, 0, 0, 1, 0, 0.4,
			0, 0, 0.1, 0, 0, 1, 0,
		})
	})

	It("meets the task exactly when the Jacobian has full row rank", func() {
		s := solverFor(7, nil, ik.DefaultConfig())
		twist := []float64{0.2, -0.1, 0.4, 0.0, 0.3, -0.2}

		qdot, err := s.Solve(jac, twist)
		Expect(err).NotTo(HaveOccurred())

		got := apply(jac, qdot)
		for i := range twist {
			Expect(got[i]).To(BeNumerically("~", twist[i], 1e-10))
		}
	})

	It("returns the minimum-norm solution of the redundant system", func() {
		s := solverFor(7, nil, ik.DefaultConfig())
		twist := []float64{0.2, -0.1, 0.4, 0.0, 0.3, -0.2}

		qdot, err := s.Solve(jac, twist)
		Expect(err).NotTo(HaveOccurred())

		// Any least-squares solution differs from the pseudo-inverse one
		// by a null-space vector; the pseudo-inverse solution is the
		// orthogonal projection, so perturbing along a null direction
		// must only grow the norm. Probe with J's null space via SVD.
		var svd mat.SVD
		Expect(svd.Factorize(jac, mat.SVDFull)).To(BeTrue())
		var v mat.Dense
		svd.VTo(&v)

		norm := func(x []float64) float64 {
			var s float64
			for _, e := range x {
				s += e * e
			}
			return math.Sqrt(s)
		}
		base := norm(qdot)
		for col := 6; col < 7; col++ { // null-space column of V
			perturbed := make([]float64, len(qdot))
			for j := range perturbed {
				perturbed[j] = qdot[j] + 0.1*v.At(j, col)
			}
			Expect(norm(perturbed)).To(BeNumerically(">", base))
		}
	})

	It("keeps the solution bounded as a singular value collapses", func() {
		twist := []float64{1, 0, 0, 0, 0, 0}
		for _, scale := range []float64{1e-2, 1e-6, 1e-10, 0} {
			j := mat.NewDense(6, 2, nil)
			j.Set(0, 0, 1)
			j.Set(0, 1, 1)
			j.Set(1, 0, scale) // second direction fades away
			j.Set(1, 1, -scale)

			s := solverFor(2, nil, ik.DefaultConfig())
			qdot, err := s.Solve(j, twist)
			Expect(err).NotTo(HaveOccurred())

			var n float64
			for _, e := range qdot {
				n += e * e
			}
			n = math.Sqrt(n)
			Expect(n).To(BeNumerically("<", 10.0))
		}
	})

	It("honors mimic coupling through the whole pipeline", func() {
		s := solverFor(7, map[int]ik.Relation{6: {Master: 5, Multiplier: -0.5}}, ik.DefaultConfig())
		twist := []float64{0.2, -0.1, 0.4, 0.0, 0.3, -0.2}

		qdot, err := s.Solve(jac, twist)
		Expect(err).NotTo(HaveOccurred())
		Expect(qdot).To(HaveLen(7))
		Expect(qdot[6]).To(Equal(-0.5 * qdot[5]))
	})
})
