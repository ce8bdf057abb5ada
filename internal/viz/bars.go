package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/asagen/episim/internal/epi"
	"github.com/asagen/episim/internal/model"
)

// DefaultBackground is the bar track color, the one customization point the
// rendering boundary exposes.
const DefaultBackground = "#dddddd"

var (
	barTitleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	barLabelStyle = lipgloss.NewStyle().Width(12)

	barColors = [model.Compartments]lipgloss.Color{
		lipgloss.Color("33"),  // susceptible, blue
		lipgloss.Color("203"), // infected, red
		lipgloss.Color("35"),  // recovered, green
	}
)

type BarOptions struct {
	Background lipgloss.Color
	Width      int
}

type BarOption func(*BarOptions)

func WithBackground(color string) BarOption {
	return func(o *BarOptions) { o.Background = lipgloss.Color(color) }
}

func WithBarWidth(w int) BarOption {
	return func(o *BarOptions) { o.Width = w }
}

// FinalBars renders the compartment distribution at the last time point as
// horizontal bars. Fractions are expected in [0, 1].
func FinalBars(fractions epi.State, opts ...BarOption) string {
	options := BarOptions{
		Background: lipgloss.Color(DefaultBackground),
		Width:      40,
	}
	for _, opt := range opts {
		opt(&options)
	}

	trackStyle := lipgloss.NewStyle().Background(options.Background)

	var b strings.Builder
	b.WriteString(barTitleStyle.Render("distribution at last time-point"))
	b.WriteString("\n")

	labels := model.Labels()
	for c := 0; c < model.Compartments; c++ {
		frac := fractions[c]
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}

		filled := int(frac*float64(options.Width) + 0.5)
		fillStyle := lipgloss.NewStyle().Foreground(barColors[c]).Background(options.Background)

		bar := fillStyle.Render(strings.Repeat("█", filled)) +
			trackStyle.Render(strings.Repeat(" ", options.Width-filled))

		b.WriteString(fmt.Sprintf("%s %s %.2f\n", barLabelStyle.Render(labels[c]), bar, frac))
	}

	return b.String()
}
