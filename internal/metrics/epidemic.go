// Package metrics provides per-trajectory epidemic summaries implementing
// the [epi.Metric] interface.
package metrics

import (
	"math"

	"github.com/asagen/episim/internal/epi"
	"github.com/asagen/episim/internal/model"
)

// PeakInfected tracks the maximum infected count seen along a trajectory.
type PeakInfected struct {
	name string
	peak float64
	atT  float64
	seen bool
}

func NewPeakInfected() *PeakInfected {
	return &PeakInfected{name: "peak_infected"}
}

func (p *PeakInfected) Name() string { return p.name }

func (p *PeakInfected) Observe(x epi.State, t float64) {
	if !p.seen || x[model.Infected] > p.peak {
		p.peak = x[model.Infected]
		p.atT = t
		p.seen = true
	}
}

func (p *PeakInfected) Value() float64 { return p.peak }

// Time returns when the peak occurred.
func (p *PeakInfected) Time() float64 { return p.atT }

func (p *PeakInfected) Reset() {
	p.peak = 0
	p.atT = 0
	p.seen = false
}

// AttackRate is the fraction of the population recovered by the end of the
// trajectory, R(T) / N. N is taken from the first observed row.
type AttackRate struct {
	name    string
	total   float64
	finalR  float64
	samples int
}

func NewAttackRate() *AttackRate {
	return &AttackRate{name: "attack_rate"}
}

func (a *AttackRate) Name() string { return a.name }

func (a *AttackRate) Observe(x epi.State, t float64) {
	if a.samples == 0 {
		a.total = x.Sum()
	}
	a.finalR = x[model.Recovered]
	a.samples++
}

func (a *AttackRate) Value() float64 {
	if a.samples == 0 || a.total == 0 {
		return 0
	}
	return a.finalR / a.total
}

func (a *AttackRate) Reset() {
	a.total = 0
	a.finalR = 0
	a.samples = 0
}

// Conservation tracks the worst relative drift of S+I+R from the initial
// total. A correct integration keeps this within round-off.
type Conservation struct {
	name     string
	total    float64
	maxDrift float64
	samples  int
}

func NewConservation() *Conservation {
	return &Conservation{name: "conservation_drift"}
}

func (c *Conservation) Name() string { return c.name }

func (c *Conservation) Observe(x epi.State, t float64) {
	sum := x.Sum()
	if c.samples == 0 {
		c.total = sum
	} else if c.total != 0 {
		drift := math.Abs(sum-c.total) / c.total
		if drift > c.maxDrift {
			c.maxDrift = drift
		}
	}
	c.samples++
}

func (c *Conservation) Value() float64 { return c.maxDrift }

func (c *Conservation) Reset() {
	c.total = 0
	c.maxDrift = 0
	c.samples = 0
}

// Defaults returns the standard metric set attached to every CLI run.
func Defaults() []epi.Metric {
	return []epi.Metric{
		NewPeakInfected(),
		NewAttackRate(),
		NewConservation(),
	}
}
