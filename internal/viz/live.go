package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/asagen/episim/internal/epi"
	"github.com/asagen/episim/internal/model"
	"github.com/asagen/episim/internal/sim"
)

const (
	graphWidth  = 80
	graphHeight = 14
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Live replays a computed trajectory frame by frame. The trajectory is
// integrated up front by the simulator; this model only reads it.
type Live struct {
	sim       *sim.Simulator
	fractions []epi.State
	idx       int
	stride    int
	playing   bool
	fps       int
}

func NewLive(sm *sim.Simulator, fps int) Live {
	n := len(sm.Times())
	stride := n / 300
	if stride < 1 {
		stride = 1
	}
	idx := 1
	if n < 2 {
		idx = 0
	}
	return Live{
		sim:       sm,
		fractions: sm.Fractions(),
		idx:       idx,
		stride:    stride,
		playing:   true,
		fps:       fps,
	}
}

func (m Live) Init() tea.Cmd {
	return m.tick()
}

func (m Live) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "r":
			m.idx = 1
			if len(m.fractions) < 2 {
				m.idx = 0
			}
			m.playing = true
		case "right", "l":
			m.advance()
		}
	case TickMsg:
		if m.playing {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Live) advance() {
	m.idx += m.stride
	if m.idx >= len(m.fractions) {
		m.idx = len(m.fractions) - 1
		m.playing = false
	}
}

func (m Live) View() string {
	times := m.sim.Times()
	row := m.sim.Trajectory()[m.idx]
	labels := model.Labels()

	graph := PlotFractions(m.fractions[:m.idx+1], graphWidth, graphHeight)

	var stats strings.Builder
	stats.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("time"),
		valueStyle.Render(fmt.Sprintf("%.2f / %.2f", times[m.idx], times[len(times)-1]))))
	for c := 0; c < model.Compartments; c++ {
		stats.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(labels[c]),
			valueStyle.Render(fmt.Sprintf("%.1f", row[c]))))
	}
	stats.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("total"),
		valueStyle.Render(fmt.Sprintf("%.1f", m.sim.Total()))))

	status := ""
	if !m.playing {
		status = pausedStyle.Render("  [paused]")
	}

	return headerStyle.Render("episim live"+status) + "\n" +
		graph + "\n\n" +
		statsStyle.Render(stats.String()) + "\n" +
		helpStyle.Render("space play/pause · → step · r restart · q quit")
}

// RunLive drives the replay until the user quits.
func RunLive(sm *sim.Simulator, fps int) error {
	p := tea.NewProgram(NewLive(sm, fps))
	_, err := p.Run()
	return err
}
