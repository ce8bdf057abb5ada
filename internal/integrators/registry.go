package integrators

import (
	"fmt"
	"sort"

	"github.com/asagen/episim/internal/epi"
)

var factories = map[string]func() epi.Integrator{
	"euler": func() epi.Integrator { return NewEuler() },
	"rk4":   func() epi.Integrator { return NewRK4() },
	"rk45":  func() epi.Integrator { return NewRK45() },
}

// ForName returns a fresh integrator for a registered name.
func ForName(name string) (epi.Integrator, error) {
	fn, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

// Names lists registered integrator names in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
