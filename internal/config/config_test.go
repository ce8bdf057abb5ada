package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultScenario(t *testing.T) {
	scn := DefaultScenario()

	if scn.Beta != DefaultBeta {
		t.Errorf("expected beta %f, got %f", DefaultBeta, scn.Beta)
	}
	if scn.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if scn.T <= 0 {
		t.Error("t should be positive")
	}
	if scn.N0 != [3]float64{100, 1, 0} {
		t.Errorf("unexpected default N0: %v", scn.N0)
	}
	if scn.Integrator != "rk4" {
		t.Errorf("expected rk4 integrator, got %s", scn.Integrator)
	}
}

func TestGetPreset(t *testing.T) {
	scn := GetPreset("textbook")
	if scn == nil {
		t.Fatal("expected preset, got nil")
	}
	if scn.N0 != [3]float64{999, 1, 0} {
		t.Errorf("unexpected N0: %v", scn.N0)
	}

	// Mutating the copy must not touch the registry.
	scn.Beta = 99
	if Presets["textbook"].Beta == 99 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	for i := 1; i < len(names); i++ {
		if names[i] < names[i-1] {
			t.Error("preset names should be sorted")
		}
	}
}

func TestLoadSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")

	scn := &Scenario{
		Beta:       0.25,
		Gamma:      0.08,
		N0:         [3]float64{5000, 3, 2},
		T:          200,
		Dt:         0.25,
		Integrator: "rk45",
	}

	if err := Save(path, scn); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if *loaded != *scn {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", loaded, scn)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("beta: 0.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Beta != 0.5 {
		t.Errorf("expected beta 0.5, got %f", loaded.Beta)
	}
	// Keys absent from the file keep their defaults.
	if loaded.Gamma != DefaultGamma {
		t.Errorf("expected default gamma, got %f", loaded.Gamma)
	}
	if loaded.Integrator != DefaultSolver {
		t.Errorf("expected default integrator, got %s", loaded.Integrator)
	}
}
