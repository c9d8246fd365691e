package compare_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/odelab/internal/compare"
	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/models"
	"github.com/san-kum/odelab/internal/reference"
	"github.com/san-kum/odelab/internal/sim"
)

func line(times ...float64) *dynamo.Trajectory {
	tr := dynamo.NewTrajectory(len(times))
	for _, t := range times {
		tr.Append(t, dynamo.State{2 * t, -t})
	}
	return tr
}

var _ = Describe("Interpolate", func() {
	ref := line(0, 1, 2, 4)

	It("returns exact samples on grid points", func() {
		x, err := compare.Interpolate(ref, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(x).To(Equal(dynamo.State{4, -2}))
	})

	It("interpolates linearly between bracketing samples", func() {
		x, err := compare.Interpolate(ref, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(x[0]).To(BeNumerically("~", 6, 1e-12))
		Expect(x[1]).To(BeNumerically("~", -3, 1e-12))
	})

	It("accepts both endpoints", func() {
		_, err := compare.Interpolate(ref, 0)
		Expect(err).NotTo(HaveOccurred())
		_, err = compare.Interpolate(ref, 4)
		Expect(err).NotTo(HaveOccurred())
	})

	It("refuses to extrapolate", func() {
		_, err := compare.Interpolate(ref, 4.1)
		Expect(err).To(MatchError(dynamo.ErrOutOfRange))
		_, err = compare.Interpolate(ref, -0.1)
		Expect(err).To(MatchError(dynamo.ErrOutOfRange))
	})

	It("does not alias the reference samples", func() {
		x, _ := compare.Interpolate(ref, 1)
		x[0] = 99
		Expect(ref.States[1][0]).To(Equal(2.0))
	})
})

var _ = Describe("Compare", func() {
	var osc *models.Oscillator
	x0 := dynamo.State{1, 0.5}

	BeforeEach(func() {
		var err error
		osc, err = models.NewOscillator(4)
		Expect(err).NotTo(HaveOccurred())
	})

	run := func(st dynamo.Stepper, h float64, steps int) *dynamo.Trajectory {
		traj, err := sim.New(st).Run(osc, x0, dynamo.Config{H: h, Steps: steps})
		Expect(err).NotTo(HaveOccurred())
		return traj
	}

	Context("with a candidate inside the reference span", func() {
		It("orders the aggregates max >= mean >= 0", func() {
			candidate := run(integrators.NewEuler(), 0.01, 200)
			ref, err := reference.Analytic{Dim: 2, Fn: osc.Exact(x0, 0)}.Solve(osc, x0, reference.Grid(0, 2, 41))
			Expect(err).NotTo(HaveOccurred())

			r, err := compare.Compare(candidate, ref)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.MeanAbsError).To(BeNumerically(">=", 0))
			Expect(r.MaxAbsError).To(BeNumerically(">=", r.MeanAbsError))
			Expect(r.AbsErrors).To(HaveLen(candidate.Len()))
			Expect(r.MaxAbsPerDim).To(HaveLen(2))
			Expect(r.MaxAbsTime).To(BeNumerically(">", 0))
		})

		It("reports RK4 far closer to the closed form than Euler", func() {
			ref, err := reference.Analytic{Dim: 2, Fn: osc.Exact(x0, 0)}.Solve(osc, x0, reference.Grid(0, 10, 10001))
			Expect(err).NotTo(HaveOccurred())

			rk4, err := compare.Compare(run(integrators.NewRK4(), 0.001, 10000), ref)
			Expect(err).NotTo(HaveOccurred())
			euler, err := compare.Compare(run(integrators.NewEuler(), 0.001, 10000), ref)
			Expect(err).NotTo(HaveOccurred())

			Expect(rk4.MaxAbsError).To(BeNumerically("<", 1e-4))
			Expect(euler.MaxAbsError).To(BeNumerically(">", 10*rk4.MaxAbsError))
		})

		It("is zero against itself", func() {
			traj := run(integrators.NewRK4(), 0.01, 50)
			r, err := compare.Compare(traj, traj)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.MaxAbsError).To(BeZero())
			Expect(r.MeanAbsError).To(BeZero())
		})

		It("is pure", func() {
			candidate := run(integrators.NewEuler(), 0.05, 20)
			ref := run(integrators.NewRK4(), 0.01, 100)
			a, err := compare.Compare(candidate, ref)
			Expect(err).NotTo(HaveOccurred())
			b, err := compare.Compare(candidate, ref)
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(Equal(b))
		})
	})

	Context("with a candidate beyond the reference span", func() {
		It("fails the whole comparison", func() {
			candidate := line(0, 1, 2, 5)
			r, err := compare.Compare(candidate, line(0, 1, 2, 4))
			Expect(err).To(MatchError(dynamo.ErrOutOfRange))
			Expect(r).To(BeNil())
		})
	})

	Context("with a non-finite sample", func() {
		scalar := func(values ...float64) *dynamo.Trajectory {
			tr := dynamo.NewTrajectory(len(values))
			for i, v := range values {
				tr.Append(float64(i), dynamo.State{v})
			}
			return tr
		}

		It("fails on a poisoned reference instead of skewing the aggregates", func() {
			r, err := compare.Compare(scalar(1, 2, 3), scalar(1.1, math.NaN(), 3.1))
			Expect(err).To(MatchError(dynamo.ErrNonFiniteState))
			Expect(r).To(BeNil())
		})

		It("fails on a poisoned candidate", func() {
			r, err := compare.Compare(scalar(1, math.Inf(1), 3), scalar(1, 2, 3))
			Expect(err).To(MatchError(dynamo.ErrNonFiniteState))
			Expect(r).To(BeNil())
		})
	})

	It("rejects mismatched dimensions", func() {
		scalar := dynamo.NewTrajectory(1)
		scalar.Append(0, dynamo.State{1})
		_, err := compare.Compare(scalar, line(0, 1))
		Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
	})

	It("falls back to absolute error for a zero reference component", func() {
		candidate := dynamo.NewTrajectory(1)
		candidate.Append(0, dynamo.State{0.5, 1})
		r, err := compare.Compare(candidate, line(0, 1))
		Expect(err).NotTo(HaveOccurred())
		Expect(r.RelErrors[0][0]).To(Equal(0.5))
		Expect(math.IsInf(r.RelErrors[0][1], 0)).To(BeFalse())
	})
})
