// ABOUTME: Tests for TUI model and key handling
// ABOUTME: Tests key to event mapping, status updates and rendering
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/control"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
)

func TestKeyEvent(t *testing.T) {
	tests := []struct {
		key      string
		expected control.Event
	}{
		{"up", control.TempoBy(5)},
		{"down", control.TempoBy(-5)},
		{"right", control.VolumeBy(5)},
		{"left", control.VolumeBy(-5)},
		{" ", control.NextPattern()},
		{"2", control.SelectPattern(2)},
		{"h", control.Play(sound.HiHat)},
		{"s", control.Play(sound.Snare)},
		{"b", control.Play(sound.BassDrum)},
		{"q", control.StopPlayback()},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			ev, ok := keyEvent(tt.key)
			if !ok {
				t.Fatalf("expected key %q to map to an event", tt.key)
			}
			if ev != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, ev)
			}
		})
	}

	if _, ok := keyEvent("x"); ok {
		t.Error("expected unmapped key to produce no event")
	}
}

func TestKeysSendToSource(t *testing.T) {
	src := control.NewSource("tui", 4)
	model := NewModel("box", []string{"empty"}, src)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyUp})
	model = updated.(Model)

	ev, ok := src.TryReceive()
	if !ok || ev != control.TempoBy(5) {
		t.Errorf("expected tempo event, got %v", ev)
	}
	if model.lastKey != "up" {
		t.Errorf("expected last key 'up', got %q", model.lastKey)
	}
}

func TestQuitStopsPlayback(t *testing.T) {
	src := control.NewSource("tui", 4)
	model := NewModel("box", nil, src)

	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !updated.(Model).quitting {
		t.Error("expected model to be quitting")
	}
	if ev, ok := src.TryReceive(); !ok || ev.Kind != control.Stop {
		t.Errorf("expected stop event, got %v", ev)
	}
}

func TestDebugToggle(t *testing.T) {
	model := NewModel("box", nil, nil)
	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if !updated.(Model).showDebug {
		t.Error("expected debug view enabled")
	}
}

func TestStatusAndView(t *testing.T) {
	model := NewModel("kitchen", []string{"empty", "standard", "funky"}, nil)

	updated, _ := model.Update(StatusMsg{Tempo: 128, Volume: 50, Pattern: "funky", PatternIndex: 2, Voices: 3})
	model = updated.(Model)

	if model.status.Tempo != 128 {
		t.Errorf("expected tempo 128, got %v", model.status.Tempo)
	}

	view := model.View()
	for _, want := range []string{"kitchen", "128 BPM", "50%", "funky"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{0, "░░░░"},
		{50, "██░░"},
		{100, "████"},
		{150, "████"},
	}

	for _, tt := range tests {
		if got := renderBar(tt.value, 100, 4); got != tt.expected {
			t.Errorf("renderBar(%v): expected %q, got %q", tt.value, tt.expected, got)
		}
	}
}

func TestRenderBeat(t *testing.T) {
	if got := renderBeat(2.5, 4); got != "○○●○" {
		t.Errorf("unexpected beat marker %q", got)
	}
}
