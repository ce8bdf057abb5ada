// Package model provides compartmental epidemic models for simulation.
//
// [SIR] implements the [epi.System] interface, defining the differential
// equations governing compartment flow. It also implements
// [epi.Configurable] for parameter inspection.
package model
