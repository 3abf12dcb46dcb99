// ABOUTME: Tests for the remote command grammar
// ABOUTME: Tests parsing, canonical formatting and rejection of malformed lines
package control

import (
	"errors"
	"testing"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line      string
		expected  Command
		canonical string
	}{
		{"mode 1", Command{Verb: VerbMode, Value: 1}, "mode 1"},
		{"  MODE   7 ", Command{Verb: VerbMode, Value: 7}, "mode 7"},
		{"volume 0", Command{Verb: VerbVolume, Value: 0}, "volume 0"},
		{"volume 100", Command{Verb: VerbVolume, Value: 100}, "volume 100"},
		{"tempo 40", Command{Verb: VerbTempo, Value: 40}, "tempo 40"},
		{"Tempo 300", Command{Verb: VerbTempo, Value: 300}, "tempo 300"},
		{"play 2", Command{Verb: VerbPlay, Value: 2}, "play 2"},
		{"play 4", Command{Verb: VerbPlay, Value: 1}, "play 1"},
		{"stop", Command{Verb: VerbStop}, "stop"},
		{"stop now", Command{Verb: VerbStop}, "stop"},
		{"tempo 120 extra", Command{Verb: VerbTempo, Value: 120}, "tempo 120"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := ParseCommand(tt.line)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, cmd)
			}
			if cmd.String() != tt.canonical {
				t.Errorf("expected %q, got %q", tt.canonical, cmd.String())
			}
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		line string
		verb string
	}{
		{"jump 3", "jump"},
		{"tempo", "tempo"},
		{"tempo fast", "tempo"},
		{"tempo 39", "tempo"},
		{"tempo 301", "tempo"},
		{"volume 101", "volume"},
		{"volume -1", "volume"},
		{"mode -2", "mode"},
		{"play 99999999999", "play"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := ParseCommand(tt.line)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Verb != tt.verb {
				t.Errorf("expected verb %q, got %q", tt.verb, perr.Verb)
			}
		})
	}
}

func TestParseCommandEmpty(t *testing.T) {
	for _, line := range []string{"", "   ", "\n\t"} {
		if _, err := ParseCommand(line); !errors.Is(err, ErrEmpty) {
			t.Errorf("expected ErrEmpty for %q, got %v", line, err)
		}
	}
}

func TestCommandNormalize(t *testing.T) {
	cmd := Command{Verb: VerbMode, Value: 7}.Normalize(3)
	if cmd.Value != 1 {
		t.Errorf("expected mode 1, got %d", cmd.Value)
	}

	tempo := Command{Verb: VerbTempo, Value: 120}.Normalize(3)
	if tempo.Value != 120 {
		t.Errorf("normalize must not change tempo, got %d", tempo.Value)
	}
}

func TestCommandEvent(t *testing.T) {
	tests := []struct {
		cmd      Command
		expected Event
	}{
		{Command{Verb: VerbMode, Value: 2}, SelectPattern(2)},
		{Command{Verb: VerbVolume, Value: 55}, SetVolume(55)},
		{Command{Verb: VerbTempo, Value: 90}, SetTempo(90)},
		{Command{Verb: VerbPlay, Value: 0}, Play(sound.HiHat)},
		{Command{Verb: VerbStop}, StopPlayback()},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.String(), func(t *testing.T) {
			if got := tt.cmd.Event(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
