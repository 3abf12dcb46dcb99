// ABOUTME: Bubbletea model for the beatbox TUI
// ABOUTME: Key presses become control events; status snapshots drive the view
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/control"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
)

const (
	tempoStep  = 5
	volumeStep = 5
)

// Model represents the TUI state
type Model struct {
	name     string
	patterns []string
	source   *control.Source

	status    control.Status
	lastKey   string
	showDebug bool
	quitting  bool

	width  int
	height int
}

// StatusMsg carries a loop status snapshot into the TUI
type StatusMsg control.Status

// NewModel creates a model sending events to source (nil for display only)
func NewModel(name string, patterns []string, source *control.Source) Model {
	return Model{
		name:     name,
		patterns: patterns,
		source:   source,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.status = control.Status(msg)
	}

	return m, nil
}

// keyEvent maps a key to the control event it produces
func keyEvent(key string) (control.Event, bool) {
	switch key {
	case "up", "+":
		return control.TempoBy(tempoStep), true
	case "down", "-":
		return control.TempoBy(-tempoStep), true
	case "right":
		return control.VolumeBy(volumeStep), true
	case "left":
		return control.VolumeBy(-volumeStep), true
	case " ", "n":
		return control.NextPattern(), true
	case "h":
		return control.Play(sound.HiHat), true
	case "s":
		return control.Play(sound.Snare), true
	case "b", "k":
		return control.Play(sound.BassDrum), true
	case "q", "ctrl+c":
		return control.StopPlayback(), true
	}

	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return control.SelectPattern(int(key[0] - '0')), true
	}
	return control.Event{}, false
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "d" {
		m.showDebug = !m.showDebug
		return m, nil
	}

	ev, ok := keyEvent(key)
	if !ok {
		return m, nil
	}
	m.lastKey = key

	if m.source != nil {
		m.source.Send(ev)
	}

	if ev.Kind == control.Stop {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	activeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping beatbox...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Beatbox: " + m.name))
	b.WriteString("\n\n")

	m.field(&b, "Tempo:   ", fmt.Sprintf("%.0f BPM", m.status.Tempo))
	m.field(&b, "Volume:  ", fmt.Sprintf("[%s] %.0f%%", renderBar(m.status.Volume, 100, 20), m.status.Volume))
	m.field(&b, "Beat:    ", fmt.Sprintf("%s %.2f", renderBeat(m.status.Position, 8), m.status.Beat))
	m.field(&b, "Voices:  ", fmt.Sprintf("%d", m.status.Voices))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Patterns:"))
	b.WriteString("\n")
	for i, name := range m.patterns {
		line := fmt.Sprintf("  %d %s", i, name)
		if i == m.status.PatternIndex {
			b.WriteString(activeStyle.Render(line + "  <"))
		} else {
			b.WriteString(valueStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.showDebug {
		b.WriteString("\n")
		j := m.status.Jitter
		m.field(&b, "Loop:    ", fmt.Sprintf("%d iterations, %d frames", m.status.Iterations, m.status.Frames))
		m.field(&b, "Jitter:  ", fmt.Sprintf("min %v  max %v  avg %v  (%d/s)", j.Min, j.Max, j.Avg, j.Count))
		m.field(&b, "Errors:  ", fmt.Sprintf("%d", m.status.DeviceErrors))
		m.field(&b, "Key:     ", m.lastKey)
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ tempo  ←/→ volume  space next  0-9 pattern  h/s/b play  d debug  q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) field(b *strings.Builder, label, value string) {
	b.WriteString(headerStyle.Render(label))
	b.WriteString(valueStyle.Render(value))
	b.WriteString("\n")
}

// renderBar draws a filled bar for value out of total
func renderBar(value, total float64, width int) string {
	filled := 0
	if total > 0 {
		filled = int(value / total * float64(width))
	}
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// renderBeat marks the current beat within a loop of the given length
func renderBeat(position float64, beats int) string {
	current := int(position) % beats
	var b strings.Builder
	for i := 0; i < beats; i++ {
		if i == current {
			b.WriteString("●")
		} else {
			b.WriteString("○")
		}
	}
	return b.String()
}
