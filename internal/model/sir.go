package model

import (
	"fmt"
	"math"

	"github.com/asagen/episim/internal/epi"
)

// Compartment indices into an SIR state vector.
const (
	Susceptible = iota
	Infected
	Recovered
	Compartments
)

// SIR implements the susceptible-infected-recovered dynamics.
// State: [S, I, R]
// Equations:
//
//	dS/dt = -beta*S*I/N
//	dI/dt = beta*S*I/N - gamma*I
//	dR/dt = gamma*I
type SIR struct {
	beta  float64 // transmission rate, S -> I
	gamma float64 // recovery rate, I -> R
	total float64 // fixed normalizing population; 0 means use the live sum
}

// NewSIR constructs the vector field. Both rates must be finite and
// non-negative.
func NewSIR(beta, gamma float64) (*SIR, error) {
	if math.IsNaN(beta) || math.IsInf(beta, 0) || beta < 0 {
		return nil, fmt.Errorf("%w: beta must be finite and non-negative, got %v", epi.ErrConfigValue, beta)
	}
	if math.IsNaN(gamma) || math.IsInf(gamma, 0) || gamma < 0 {
		return nil, fmt.Errorf("%w: gamma must be finite and non-negative, got %v", epi.ErrConfigValue, gamma)
	}
	return &SIR{beta: beta, gamma: gamma}, nil
}

func (m *SIR) Dim() int { return Compartments }

// SetTotal pins the normalizing population N. Integrating against a fixed N
// keeps the conservation law exact instead of tracking round-off in the
// current state. Without a pinned total, Derive normalizes by the live sum.
func (m *SIR) SetTotal(n float64) { m.total = n }

// Derive computes the SIR derivatives. Evaluating on a zero-population state
// with no pinned total yields NaN components; callers detect this with
// State.IsValid.
func (m *SIR) Derive(x epi.State, _ float64) epi.State {
	s, i := x[Susceptible], x[Infected]

	n := m.total
	if n == 0 {
		n = x.Sum()
	}

	infection := m.beta * s * i / n
	recovery := m.gamma * i

	return epi.State{-infection, infection - recovery, recovery}
}

func (m *SIR) Beta() float64  { return m.beta }
func (m *SIR) Gamma() float64 { return m.gamma }

// R0 is the basic reproduction number beta/gamma. It is +Inf for a
// non-recovering epidemic (gamma == 0 with beta > 0).
func (m *SIR) R0() float64 { return m.beta / m.gamma }

// GetParams implements epi.Configurable
func (m *SIR) GetParams() map[string]float64 {
	return map[string]float64{
		"beta":  m.beta,
		"gamma": m.gamma,
	}
}

// SetParam implements epi.Configurable
func (m *SIR) SetParam(name string, value float64) {
	switch name {
	case "beta":
		m.beta = value
	case "gamma":
		m.gamma = value
	}
}

// Labels returns compartment names in state order.
func Labels() [Compartments]string {
	return [Compartments]string{"Susceptible", "Infected", "Recovered"}
}
