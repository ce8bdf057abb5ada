// Package viz renders trajectories in the terminal. It consumes
// (times, trajectory, total) through the simulator query API and never
// feeds back into the core.
package viz

import (
	"github.com/guptarohit/asciigraph"

	"github.com/asagen/episim/internal/epi"
	"github.com/asagen/episim/internal/model"
)

// PlotFractions renders each compartment's fraction of the population over
// the full grid as a single multi-series chart.
func PlotFractions(fractions []epi.State, width, height int) string {
	series := make([][]float64, model.Compartments)
	for c := range series {
		series[c] = make([]float64, len(fractions))
		for i, row := range fractions {
			series[c][i] = row[c]
		}
	}

	labels := model.Labels()
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green),
		asciigraph.SeriesLegends(labels[0], labels[1], labels[2]),
		asciigraph.Caption("distribution of compartments per time"),
	)
}

// PlotSeries renders a single named series, e.g. a sweep response curve.
func PlotSeries(data []float64, caption string, width, height int) string {
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
