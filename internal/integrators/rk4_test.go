package integrators

import (
	"math"
	"testing"

	"github.com/asagen/episim/internal/epi"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) Dim() int { return 2 }

func (h *harmonicOscillator) Derive(x epi.State, t float64) epi.State {
	return epi.State{x[1], -x[0]}
}

// decayChain mimics the SIR structure: mass flows between compartments and
// the component sum is a linear invariant.
type decayChain struct{}

func (d *decayChain) Dim() int { return 3 }

func (d *decayChain) Derive(x epi.State, t float64) epi.State {
	flow := 0.2 * x[0] * x[1] / (x[0] + x[1] + x[2])
	out := 0.1 * x[1]
	return epi.State{-flow, flow - out, out}
}

func TestRK4Accuracy(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewRK4()

	x0 := epi.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	x := x0
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4PreservesLinearInvariant(t *testing.T) {
	dyn := &decayChain{}
	integ := NewRK4()

	x := epi.State{100, 1, 0}
	total := x.Sum()

	for i := 0; i < 1000; i++ {
		x = integ.Step(dyn, x, float64(i)*0.1, 0.1)
	}

	if drift := math.Abs(x.Sum()-total) / total; drift > 1e-12 {
		t.Errorf("sum drift too large: %e", drift)
	}
}

func TestEulerStep(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewEuler()

	x := integ.Step(dyn, epi.State{1.0, 0.0}, 0, 0.1)

	// One explicit Euler step: x + dt*f(x)
	if x[0] != 1.0 || x[1] != -0.1 {
		t.Errorf("unexpected Euler step result: %v", x)
	}
}
