// Package sweep runs independent simulations across a rate-parameter range.
// Simulator instances own their state exclusively, so the runs are safe to
// execute on separate goroutines.
package sweep

import (
	"context"
	"fmt"
	"sync"

	"github.com/asagen/episim/internal/config"
	"github.com/asagen/episim/internal/integrators"
	"github.com/asagen/episim/internal/metrics"
	"github.com/asagen/episim/internal/sim"
)

// Point is the outcome of one simulation in a sweep.
type Point struct {
	Param        float64
	AttackRate   float64
	PeakInfected float64
	PeakTime     float64
}

type Sweep struct {
	Param  string // "beta" or "gamma"
	Values []float64
}

// Over builds a sweep of n evenly spaced values of the named rate parameter.
func Over(param string, lo, hi float64, n int) (*Sweep, error) {
	if param != "beta" && param != "gamma" {
		return nil, fmt.Errorf("unknown sweep parameter: %s (want beta or gamma)", param)
	}
	if n < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 values, got %d", n)
	}
	if hi < lo {
		return nil, fmt.Errorf("sweep range inverted: [%v, %v]", lo, hi)
	}
	return &Sweep{Param: param, Values: Linspace(lo, hi, n)}, nil
}

// Run simulates the base scenario once per sweep value, varying only the
// swept parameter. The first failed run aborts the whole sweep.
func (s *Sweep) Run(ctx context.Context, base *config.Scenario) ([]Point, error) {
	points := make([]Point, len(s.Values))
	errs := make([]error, len(s.Values))

	var wg sync.WaitGroup
	for i, v := range s.Values {
		wg.Add(1)
		go func(idx int, val float64) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}

			beta, gamma := base.Beta, base.Gamma
			if s.Param == "beta" {
				beta = val
			} else {
				gamma = val
			}

			integ, err := integrators.ForName(base.Integrator)
			if err != nil {
				errs[idx] = err
				return
			}

			peak := metrics.NewPeakInfected()
			attack := metrics.NewAttackRate()

			sm, err := sim.New(beta, gamma,
				sim.WithN0(base.N0[0], base.N0[1], base.N0[2]),
				sim.WithHorizon(base.T),
				sim.WithStep(base.Dt),
				sim.WithIntegrator(integ),
				sim.WithMetric(peak),
				sim.WithMetric(attack),
			)
			if err != nil {
				errs[idx] = fmt.Errorf("%s=%v: %w", s.Param, val, err)
				return
			}

			summary := sm.Metrics()
			points[idx] = Point{
				Param:        val,
				AttackRate:   summary[attack.Name()],
				PeakInfected: summary[peak.Name()],
				PeakTime:     peak.Time(),
			}
		}(i, v)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return points, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	vals := make([]float64, n)
	if n == 1 {
		vals[0] = lo
		return vals
	}
	h := (hi - lo) / float64(n-1)
	for i := range vals {
		vals[i] = lo + float64(i)*h
	}
	vals[n-1] = hi
	return vals
}
