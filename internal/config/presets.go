package config

import "sort"

var Presets = map[string]*Scenario{
	"baseline": {
		Beta: 0.3, Gamma: 0.1, N0: [3]float64{100, 1, 0},
		T: 100, Dt: 0.1, Integrator: "rk4",
	},
	"textbook": {
		Beta: 0.3, Gamma: 0.1, N0: [3]float64{999, 1, 0},
		T: 160, Dt: 1.0, Integrator: "rk4",
	},
	"measles-like": {
		Beta: 1.5, Gamma: 0.1, N0: [3]float64{10000, 1, 0},
		T: 60, Dt: 0.05, Integrator: "rk4",
	},
	"slow-burn": {
		Beta: 0.15, Gamma: 0.1, N0: [3]float64{1000, 1, 0},
		T: 400, Dt: 0.5, Integrator: "rk4",
	},
	"contained": {
		Beta: 0.08, Gamma: 0.1, N0: [3]float64{1000, 10, 0},
		T: 100, Dt: 0.1, Integrator: "rk4",
	},
}

// GetPreset returns a copy of a named preset, or nil if unknown.
func GetPreset(name string) *Scenario {
	scn, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *scn
	return &c
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
