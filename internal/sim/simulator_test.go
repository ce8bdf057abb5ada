package sim_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/asagen/episim/internal/epi"
	"github.com/asagen/episim/internal/integrators"
	"github.com/asagen/episim/internal/metrics"
	"github.com/asagen/episim/internal/model"
	"github.com/asagen/episim/internal/sim"
)

// stepRecorder collects observation times for observer specs.
type stepRecorder struct {
	times []float64
}

func (r *stepRecorder) OnStep(x epi.State, t float64) {
	r.times = append(r.times, t)
}

var _ = Describe("Simulator", func() {
	Describe("construction", func() {
		It("applies the default configuration", func() {
			sm, err := sim.New(0.3, 0.1)
			Expect(err).NotTo(HaveOccurred())

			Expect(sm.Total()).To(Equal(101.0))
			Expect(sm.Trajectory()[0]).To(Equal(epi.State{100, 1, 0}))
			Expect(sm.Times()[0]).To(Equal(0.0))
		})

		It("merges overrides field-by-field", func() {
			sm, err := sim.New(0.3, 0.1,
				sim.WithN0(999, 1, 0),
				sim.WithHorizon(160),
			)
			Expect(err).NotTo(HaveOccurred())

			cfg := sm.Config()
			Expect(cfg.N0).To(Equal([3]float64{999, 1, 0}))
			Expect(cfg.T).To(Equal(160.0))
			// Dt untouched by the overrides above.
			Expect(cfg.Dt).To(Equal(sim.DefaultStep))
		})

		DescribeTable("rejects invalid configuration",
			func(beta, gamma float64, opts []sim.Option, want error) {
				_, err := sim.New(beta, gamma, opts...)
				Expect(err).To(MatchError(want))
			},
			Entry("dt greater than T", 0.3, 0.1,
				[]sim.Option{sim.WithStep(50), sim.WithHorizon(10)}, epi.ErrConfigValue),
			Entry("zero dt", 0.3, 0.1,
				[]sim.Option{sim.WithStep(0)}, epi.ErrConfigValue),
			Entry("negative T", 0.3, 0.1,
				[]sim.Option{sim.WithHorizon(-5)}, epi.ErrConfigValue),
			Entry("NaN T", 0.3, 0.1,
				[]sim.Option{sim.WithHorizon(math.NaN())}, epi.ErrConfigType),
			Entry("Inf dt", 0.3, 0.1,
				[]sim.Option{sim.WithStep(math.Inf(1))}, epi.ErrConfigType),
			Entry("negative compartment", 0.3, 0.1,
				[]sim.Option{sim.WithN0(-1, 1, 0)}, epi.ErrConfigValue),
			Entry("non-finite compartment", 0.3, 0.1,
				[]sim.Option{sim.WithN0(100, math.NaN(), 0)}, epi.ErrConfigValue),
			Entry("all-zero population", 0.3, 0.1,
				[]sim.Option{sim.WithN0(0, 0, 0)}, epi.ErrZeroPopulation),
			Entry("negative beta", -0.3, 0.1, nil, epi.ErrConfigValue),
			Entry("negative gamma", 0.3, -0.1, nil, epi.ErrConfigValue),
		)
	})

	Describe("the textbook epidemic", func() {
		var sm *sim.Simulator

		BeforeEach(func() {
			var err error
			sm, err = sim.New(0.3, 0.1,
				sim.WithN0(999, 1, 0),
				sim.WithHorizon(160),
				sim.WithStep(1.0),
			)
			Expect(err).NotTo(HaveOccurred())
		})

		It("produces floor(T/dt) rows", func() {
			Expect(sm.Trajectory()).To(HaveLen(160))
			Expect(sm.Times()).To(HaveLen(160))
			Expect(sm.Times()[159]).To(Equal(160.0))
		})

		It("starts exactly at the initial state", func() {
			Expect(sm.Trajectory()[0]).To(Equal(epi.State{999, 1, 0}))
		})

		It("conserves the total population", func() {
			for _, row := range sm.Trajectory() {
				Expect(row.Sum()).To(BeNumerically("~", 1000.0, 1000.0*1e-6))
			}
		})

		It("has non-decreasing recovered counts", func() {
			traj := sm.Trajectory()
			for i := 1; i < len(traj); i++ {
				Expect(traj[i][model.Recovered]).To(BeNumerically(">=", traj[i-1][model.Recovered]))
			}
		})

		It("shows a single epidemic peak with near-total recovery", func() {
			peak, peakTime := sm.Peak()

			// R0 = 3: the peak infected fraction is about 30% of the
			// population and the final size about 94%.
			Expect(peak).To(BeNumerically(">", 250))
			Expect(peak).To(BeNumerically("<", 350))
			Expect(peakTime).To(BeNumerically(">", 0))
			Expect(peakTime).To(BeNumerically("<", 160))

			final := sm.Final()
			Expect(final[model.Infected]).To(BeNumerically("<", 5))
			Expect(final[model.Recovered]).To(BeNumerically(">", 900))
		})
	})

	Describe("degenerate infection", func() {
		It("keeps the trajectory constant when I0 is zero", func() {
			sm, err := sim.New(0.3, 0.1,
				sim.WithN0(100, 0, 20),
				sim.WithHorizon(50),
				sim.WithStep(0.5),
			)
			Expect(err).NotTo(HaveOccurred())

			for _, row := range sm.Trajectory() {
				Expect(row).To(Equal(epi.State{100, 0, 20}))
			}
		})
	})

	Describe("Solve", func() {
		var sm *sim.Simulator

		BeforeEach(func() {
			var err error
			sm, err = sim.New(0.3, 0.1)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a wrong-shape initial state", func() {
			_, err := sm.Solve(epi.State{1, 2}, []float64{0, 1})
			Expect(err).To(MatchError(epi.ErrConfigType))
		})

		It("rejects a non-finite initial state element", func() {
			_, err := sm.Solve(epi.State{100, math.NaN(), 0}, []float64{0, 1})
			Expect(err).To(MatchError(epi.ErrConfigValue))
		})

		It("rejects a zero-population initial state", func() {
			_, err := sm.Solve(epi.State{0, 0, 0}, []float64{0, 1})
			Expect(err).To(MatchError(epi.ErrZeroPopulation))
		})

		It("rejects an empty grid", func() {
			_, err := sm.Solve(epi.State{100, 1, 0}, nil)
			Expect(err).To(MatchError(epi.ErrConfigValue))
		})

		It("rejects a decreasing grid", func() {
			_, err := sm.Solve(epi.State{100, 1, 0}, []float64{0, 2, 1})
			Expect(err).To(MatchError(epi.ErrConfigValue))
		})

		It("returns one row per grid point, the first equal to x0", func() {
			grid := []float64{0, 0.5, 1.0, 2.0}
			states, err := sm.Solve(epi.State{100, 1, 0}, grid)
			Expect(err).NotTo(HaveOccurred())

			Expect(states).To(HaveLen(len(grid)))
			Expect(states[0]).To(Equal(epi.State{100, 1, 0}))
		})

		It("normalizes by the supplied state's population", func() {
			grid := make([]float64, 51)
			for i := range grid {
				grid[i] = float64(i)
			}
			x0 := epi.State{9990, 10, 0}

			// The simulator was built around a 101-person scenario, but
			// Solve must integrate this state against N = 10000.
			states, err := sm.Solve(x0, grid)
			Expect(err).NotTo(HaveOccurred())
			for _, row := range states {
				Expect(row.Sum()).To(BeNumerically("~", 10000.0, 10000.0*1e-6))
			}

			// Identical to a simulator constructed with that population.
			ref, err := sim.New(0.3, 0.1, sim.WithN0(9990, 10, 0))
			Expect(err).NotTo(HaveOccurred())
			want, err := ref.Solve(x0, grid)
			Expect(err).NotTo(HaveOccurred())
			Expect(states).To(Equal(want))

			// The call leaves the constructor's normalization in place.
			again, err := sm.Solve(epi.State{100, 1, 0}, []float64{0, 1, 2})
			Expect(err).NotTo(HaveOccurred())
			for _, row := range again {
				Expect(row.Sum()).To(BeNumerically("~", 101.0, 101.0*1e-6))
			}
		})
	})

	Describe("solver failure", func() {
		It("aborts construction when the dynamics are too stiff for the grid", func() {
			_, err := sim.New(0, 1000)
			Expect(err).To(MatchError(epi.ErrIntegration))

			var ie *epi.IntegrationError
			Expect(errors.As(err, &ie)).To(BeTrue())
			Expect(ie.Step).To(BeNumerically(">", 0))
			Expect(ie.Time).To(BeNumerically(">", 0))
			Expect(ie.State.IsValid()).To(BeFalse())
		})

		It("reports the failing step when a coarse grid destabilizes the solver", func() {
			sm, err := sim.New(0.3, 0.1)
			Expect(err).NotTo(HaveOccurred())

			grid := make([]float64, 40)
			for i := range grid {
				grid[i] = float64(i) * 1e6
			}

			_, err = sm.Solve(epi.State{100, 1, 0}, grid)
			Expect(err).To(MatchError(epi.ErrIntegration))

			var ie *epi.IntegrationError
			Expect(errors.As(err, &ie)).To(BeTrue())
			Expect(ie.Step).To(BeNumerically(">", 0))
			Expect(ie.Time).To(Equal(grid[ie.Step]))
		})
	})

	Describe("observers", func() {
		It("notifies observers of every row in time order", func() {
			rec := &stepRecorder{}
			sm, err := sim.New(0.3, 0.1,
				sim.WithHorizon(10),
				sim.WithStep(1.0),
				sim.WithObserver(rec),
			)
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.times).To(Equal(sm.Times()))
		})
	})

	Describe("derived access", func() {
		var sm *sim.Simulator

		BeforeEach(func() {
			var err error
			sm, err = sim.New(0.3, 0.1,
				sim.WithN0(999, 1, 0),
				sim.WithHorizon(160),
				sim.WithStep(1.0),
				sim.WithMetric(metrics.NewAttackRate()),
				sim.WithMetric(metrics.NewConservation()),
			)
			Expect(err).NotTo(HaveOccurred())
		})

		It("normalizes every fraction row to one", func() {
			for _, row := range sm.Fractions() {
				Expect(row.Sum()).To(BeNumerically("~", 1.0, 1e-9))
			}
		})

		It("matches final fractions against the last row", func() {
			last := sm.Trajectory()[len(sm.Trajectory())-1]
			ff := sm.FinalFractions()
			for c := 0; c < model.Compartments; c++ {
				Expect(ff[c]).To(BeNumerically("~", last[c]/sm.Total(), 1e-12))
			}
		})

		It("collects registered metric values", func() {
			summary := sm.Metrics()
			Expect(summary).To(HaveKey("attack_rate"))
			Expect(summary["attack_rate"]).To(BeNumerically(">", 0.9))
			Expect(summary["conservation_drift"]).To(BeNumerically("<", 1e-6))
		})
	})

	Describe("integrator choice", func() {
		It("stays within tolerance under euler, rk4, and rk45", func() {
			for _, name := range integrators.Names() {
				integ, err := integrators.ForName(name)
				Expect(err).NotTo(HaveOccurred())

				sm, err := sim.New(0.3, 0.1,
					sim.WithN0(999, 1, 0),
					sim.WithHorizon(160),
					sim.WithStep(0.5),
					sim.WithIntegrator(integ),
				)
				Expect(err).NotTo(HaveOccurred(), "integrator %s", name)

				for _, row := range sm.Trajectory() {
					Expect(row.Sum()).To(BeNumerically("~", 1000.0, 1000.0*1e-6))
				}
			}
		})
	})
})
