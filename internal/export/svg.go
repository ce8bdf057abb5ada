// Package export renders trajectories to standalone SVG documents.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/asagen/episim/internal/epi"
	"github.com/asagen/episim/internal/model"
)

// DefaultFacecolor is the plot background, mirroring the terminal bar chart
// default.
const DefaultFacecolor = "#dddddd"

var strokeColors = [model.Compartments]string{"#1f77b4", "#d62728", "#2ca02c"}

type SVGOptions struct {
	Width     int
	Height    int
	Facecolor string
}

type SVGOption func(*SVGOptions)

func WithFacecolor(color string) SVGOption {
	return func(o *SVGOptions) { o.Facecolor = color }
}

func WithSize(w, h int) SVGOption {
	return func(o *SVGOptions) {
		o.Width = w
		o.Height = h
	}
}

// EpidemicSVG draws one polyline per compartment fraction over the time
// grid. Fractions are expected in [0, 1]; the y axis is fixed to that range
// so separate exports are comparable.
func EpidemicSVG(times []float64, fractions []epi.State, opts ...SVGOption) string {
	if len(times) < 2 || len(fractions) != len(times) {
		return ""
	}

	options := SVGOptions{Width: 640, Height: 400, Facecolor: DefaultFacecolor}
	for _, opt := range opts {
		opt(&options)
	}

	const margin = 40.0
	plotW := float64(options.Width) - 2*margin
	plotH := float64(options.Height) - 2*margin

	t0 := times[0]
	rangeT := times[len(times)-1] - t0
	if rangeT == 0 {
		rangeT = 1
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<rect x="%.0f" y="%.0f" width="%.0f" height="%.0f" fill="%s"/>
`, options.Width, options.Height, options.Width, options.Height,
		margin, margin, plotW, plotH, options.Facecolor))

	labels := model.Labels()
	for c := 0; c < model.Compartments; c++ {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="2" opacity="0.7" d="M`, strokeColors[c]))

		for i := range times {
			x := margin + (times[i]-t0)/rangeT*plotW
			y := margin + plotH - fractions[i][c]*plotH

			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		// Legend swatch and label in the top-right corner.
		lx := float64(options.Width) - margin - 120
		ly := margin + 16 + float64(c)*18
		sb.WriteString(fmt.Sprintf(`<rect x="%.0f" y="%.0f" width="12" height="12" fill="%s"/>
<text x="%.0f" y="%.0f" font-family="sans-serif" font-size="12">%s</text>
`, lx, ly-10, strokeColors[c], lx+18, ly, labels[c]))
	}

	sb.WriteString(fmt.Sprintf(`<text x="%.0f" y="%.0f" font-family="sans-serif" font-size="13">Distribution of compartments per time</text>
</svg>`, margin, margin-12))

	return sb.String()
}

// WriteSVG renders the epidemic curve to a file.
func WriteSVG(path string, times []float64, fractions []epi.State, opts ...SVGOption) error {
	svg := EpidemicSVG(times, fractions, opts...)
	if svg == "" {
		return fmt.Errorf("not enough data to render %s", path)
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
