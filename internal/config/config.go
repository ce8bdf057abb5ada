package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBeta    = 0.3
	DefaultGamma   = 0.1
	DefaultS0      = 100.0
	DefaultI0      = 1.0
	DefaultR0      = 0.0
	DefaultT       = 100.0
	DefaultDt      = 0.1
	DefaultSolver  = "rk4"
	DefaultDataDir = ".episim"
)

// Scenario is the on-disk description of a simulation run.
type Scenario struct {
	Beta       float64    `yaml:"beta"`
	Gamma      float64    `yaml:"gamma"`
	N0         [3]float64 `yaml:"n0,flow"`
	T          float64    `yaml:"t"`
	Dt         float64    `yaml:"dt"`
	Integrator string     `yaml:"integrator"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Beta:       DefaultBeta,
		Gamma:      DefaultGamma,
		N0:         [3]float64{DefaultS0, DefaultI0, DefaultR0},
		T:          DefaultT,
		Dt:         DefaultDt,
		Integrator: DefaultSolver,
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scn := DefaultScenario()
	if err := yaml.Unmarshal(data, scn); err != nil {
		return nil, err
	}
	return scn, nil
}

func Save(path string, scn *Scenario) error {
	data, err := yaml.Marshal(scn)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
