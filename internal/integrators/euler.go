package integrators

import "github.com/asagen/episim/internal/epi"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys epi.System, x epi.State, t float64, dt float64) epi.State {
	return x.Add(sys.Derive(x, t).Scale(dt))
}
