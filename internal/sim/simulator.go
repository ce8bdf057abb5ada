// Package sim owns simulation configuration and drives the numerical
// integration of an epidemic model over a time grid.
//
// A [Simulator] is constructed through the single validating factory [New],
// which merges caller options over defaults, validates the full
// configuration, and eagerly integrates the trajectory. A failed
// construction yields no Simulator; a successful one is immutable.
package sim

import (
	"fmt"
	"math"

	"github.com/asagen/episim/internal/epi"
	"github.com/asagen/episim/internal/integrators"
	"github.com/asagen/episim/internal/model"
)

// Default configuration, matching the classic 100-person scenario with a
// single index case.
const (
	DefaultS0      = 100.0
	DefaultI0      = 1.0
	DefaultR0      = 0.0
	DefaultHorizon = 100.0
	DefaultStep    = 0.1
)

// Config fixes the initial conditions and time grid of a simulation.
type Config struct {
	N0 [model.Compartments]float64 // initial (S, I, R)
	T  float64                     // time horizon
	Dt float64                     // grid step, must satisfy Dt <= T
}

func DefaultConfig() Config {
	return Config{
		N0: [model.Compartments]float64{DefaultS0, DefaultI0, DefaultR0},
		T:  DefaultHorizon,
		Dt: DefaultStep,
	}
}

// Option overrides one configuration field at construction time.
type Option func(*Simulator)

func WithN0(s, i, r float64) Option {
	return func(sm *Simulator) { sm.cfg.N0 = [model.Compartments]float64{s, i, r} }
}

func WithHorizon(t float64) Option {
	return func(sm *Simulator) { sm.cfg.T = t }
}

func WithStep(dt float64) Option {
	return func(sm *Simulator) { sm.cfg.Dt = dt }
}

func WithIntegrator(integ epi.Integrator) Option {
	return func(sm *Simulator) { sm.integrator = integ }
}

func WithMetric(m epi.Metric) Option {
	return func(sm *Simulator) { sm.metrics = append(sm.metrics, m) }
}

func WithObserver(o epi.Observer) Option {
	return func(sm *Simulator) { sm.observers = append(sm.observers, o) }
}

// Simulator holds a validated configuration together with the trajectory
// computed from it. There is no mutation API; construct a new Simulator to
// explore different parameters.
type Simulator struct {
	sir        *model.SIR
	integrator epi.Integrator
	cfg        Config
	metrics    []epi.Metric
	observers  []epi.Observer

	total   float64
	times   []float64
	states  []epi.State
	summary map[string]float64
}

// New validates rates and configuration, then integrates the model over the
// full time grid. Any violation aborts construction: rate or configuration
// problems surface as epi.ErrConfigType / epi.ErrConfigValue, an all-zero
// initial population as epi.ErrZeroPopulation, and solver failures as
// epi.ErrIntegration.
func New(beta, gamma float64, opts ...Option) (*Simulator, error) {
	sir, err := model.NewSIR(beta, gamma)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		sir:        sir,
		integrator: integrators.NewRK4(),
		cfg:        DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	x0 := make(epi.State, model.Compartments)
	for i, v := range s.cfg.N0 {
		x0[i] = v
	}

	s.total = x0.Sum()
	s.sir.SetTotal(s.total)
	s.times = timeGrid(s.cfg.T, s.cfg.Dt)

	states, err := s.Solve(x0, s.times)
	if err != nil {
		return nil, err
	}
	s.states = states

	s.summary = make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		s.summary[m.Name()] = m.Value()
	}

	return s, nil
}

func (s *Simulator) validate() error {
	if math.IsNaN(s.cfg.T) || math.IsInf(s.cfg.T, 0) {
		return fmt.Errorf("%w: T must be a finite number, got %v", epi.ErrConfigType, s.cfg.T)
	}
	if math.IsNaN(s.cfg.Dt) || math.IsInf(s.cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be a finite number, got %v", epi.ErrConfigType, s.cfg.Dt)
	}
	if s.cfg.T <= 0 {
		return fmt.Errorf("%w: T must be positive, got %v", epi.ErrConfigValue, s.cfg.T)
	}
	if s.cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", epi.ErrConfigValue, s.cfg.Dt)
	}
	if s.cfg.Dt > s.cfg.T {
		return fmt.Errorf("%w: dt %v exceeds horizon T %v", epi.ErrConfigValue, s.cfg.Dt, s.cfg.T)
	}
	total := 0.0
	for i, v := range s.cfg.N0 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: N0[%d] must be finite, got %v", epi.ErrConfigValue, i, v)
		}
		if v < 0 {
			return fmt.Errorf("%w: N0[%d] must be non-negative, got %v", epi.ErrConfigValue, i, v)
		}
		total += v
	}
	if total == 0 {
		return fmt.Errorf("%w: N0 sums to zero", epi.ErrZeroPopulation)
	}
	return nil
}

// timeGrid builds floor(T/dt) evenly spaced points from 0 to T inclusive.
// The spacing is T/(n-1), not dt; dt only fixes the point count.
func timeGrid(t, dt float64) []float64 {
	n := int(t / dt)
	if n < 1 {
		n = 1
	}
	grid := make([]float64, n)
	if n == 1 {
		return grid
	}
	h := t / float64(n-1)
	for i := range grid {
		grid[i] = float64(i) * h
	}
	grid[n-1] = t
	return grid
}

// Solve integrates the model from x0 across the given grid, returning one
// state row per grid point with the first row equal to x0. The grid must be
// non-empty and non-decreasing. The model is normalized by x0's population
// for the duration of the call, so x0 need not match the constructor's N0.
// Registered metrics and observers see every row in time order.
func (s *Simulator) Solve(x0 epi.State, grid []float64) ([]epi.State, error) {
	if len(x0) != s.sir.Dim() {
		return nil, fmt.Errorf("%w: initial state must have %d compartments, got %d",
			epi.ErrConfigType, s.sir.Dim(), len(x0))
	}
	for i, v := range x0 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: initial state element %d is not finite", epi.ErrConfigValue, i)
		}
	}
	if x0.Sum() == 0 {
		return nil, fmt.Errorf("%w: initial state sums to zero", epi.ErrZeroPopulation)
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: time grid is empty", epi.ErrConfigValue)
	}
	for i := 1; i < len(grid); i++ {
		if grid[i] < grid[i-1] {
			return nil, fmt.Errorf("%w: time grid must be non-decreasing at index %d", epi.ErrConfigValue, i)
		}
	}

	s.sir.SetTotal(x0.Sum())
	defer s.sir.SetTotal(s.total)

	for _, m := range s.metrics {
		m.Reset()
	}

	states := make([]epi.State, 0, len(grid))
	x := x0.Clone()
	states = append(states, x.Clone())
	s.observe(x, grid[0])

	for i := 1; i < len(grid); i++ {
		h := grid[i] - grid[i-1]
		x = s.integrator.Step(s.sir, x, grid[i-1], h)

		if !x.IsValid() {
			return nil, &epi.IntegrationError{
				Step:    i,
				Time:    grid[i],
				State:   x,
				Wrapped: epi.ErrIntegration,
			}
		}

		states = append(states, x.Clone())
		s.observe(x, grid[i])
	}

	return states, nil
}

func (s *Simulator) observe(x epi.State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, o := range s.observers {
		o.OnStep(x, t)
	}
}

// Total returns the conserved population N = S0 + I0 + R0.
func (s *Simulator) Total() float64 { return s.total }

// Times returns the time grid. Callers must not modify it.
func (s *Simulator) Times() []float64 { return s.times }

// Trajectory returns one state row per grid point. Callers must not modify
// the rows.
func (s *Simulator) Trajectory() []epi.State { return s.states }

// Fractions returns the trajectory normalized by the total population, one
// row per grid point.
func (s *Simulator) Fractions() []epi.State {
	rows := make([]epi.State, len(s.states))
	for i, x := range s.states {
		rows[i] = x.Scale(1 / s.total)
	}
	return rows
}

// Final returns the state at the last grid point.
func (s *Simulator) Final() epi.State {
	return s.states[len(s.states)-1].Clone()
}

// FinalFractions returns the compartment distribution at the last grid
// point.
func (s *Simulator) FinalFractions() epi.State {
	return s.Final().Scale(1 / s.total)
}

// Peak returns the maximum infected count and the time it occurs.
func (s *Simulator) Peak() (value, t float64) {
	for i, x := range s.states {
		if x[model.Infected] > value {
			value = x[model.Infected]
			t = s.times[i]
		}
	}
	return value, t
}

// Metrics returns the final value of every registered metric.
func (s *Simulator) Metrics() map[string]float64 { return s.summary }

func (s *Simulator) Model() *model.SIR { return s.sir }

func (s *Simulator) Config() Config { return s.cfg }
