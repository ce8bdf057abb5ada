package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/asagen/episim/internal/epi"
)

type ExportData struct {
	Beta       float64            `json:"beta"`
	Gamma      float64            `json:"gamma"`
	N0         [3]float64         `json:"n0"`
	T          float64            `json:"t"`
	Dt         float64            `json:"dt"`
	Integrator string             `json:"integrator"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Metrics    map[string]float64 `json:"metrics"`
}

func exportData(meta *RunMetadata, times []float64, states []epi.State) ExportData {
	data := ExportData{
		Beta:       meta.Beta,
		Gamma:      meta.Gamma,
		N0:         meta.N0,
		T:          meta.T,
		Dt:         meta.Dt,
		Integrator: meta.Integrator,
		Steps:      len(times),
		Times:      times,
		States:     make([][]float64, len(states)),
		Metrics:    meta.Metrics,
	}
	for i, s := range states {
		data.States[i] = s
	}
	return data
}

func ExportJSON(path string, meta *RunMetadata, times []float64, states []epi.State) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeJSON(file, meta, times, states)
}

func ExportJSONStdout(meta *RunMetadata, times []float64, states []epi.State) error {
	return writeJSON(os.Stdout, meta, times, states)
}

func writeJSON(w io.Writer, meta *RunMetadata, times []float64, states []epi.State) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(meta, times, states))
}
