// Package epi provides core primitives for continuous-time epidemic
// simulation.
//
// The package defines the fundamental interfaces and types for numerical
// integration of compartmental ODE models:
//
//   - [State]: vector of compartment populations
//   - [System]: interface for autonomous ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface
//   - [Metric]: per-step trajectory summary
//
// # Example
//
//	m, _ := model.NewSIR(0.3, 0.1)
//	integ := integrators.NewRK4()
//	x := integ.Step(m, epi.State{100, 1, 0}, 0, 0.1)
//
// # Thread Safety
//
// States and systems are not synchronized. A completed trajectory is
// read-only and safe for concurrent readers; independent simulations are
// safe to run on separate goroutines.
package epi
