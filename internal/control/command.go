// ABOUTME: Textual remote command grammar
// ABOUTME: Parses and formats "mode N", "volume N", "tempo N", "play N" and "stop"
package control

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/units"
)

// Verb is a remote command name
type Verb string

const (
	VerbMode   Verb = "mode"
	VerbVolume Verb = "volume"
	VerbTempo  Verb = "tempo"
	VerbPlay   Verb = "play"
	VerbStop   Verb = "stop"
)

// ErrEmpty is returned for blank command lines
var ErrEmpty = errors.New("empty command")

// ParseError describes a rejected command line
type ParseError struct {
	Verb   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Verb, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Verb, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Command is a parsed remote command
type Command struct {
	Verb  Verb
	Value int
}

// ParseCommand parses one command line. The verb is case-insensitive and
// extra trailing fields are ignored. Play indices are reduced modulo the
// instrument count; mode indices are kept as sent.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmpty
	}

	verb := Verb(strings.ToLower(fields[0]))
	switch verb {
	case VerbStop:
		return Command{Verb: VerbStop}, nil
	case VerbMode, VerbVolume, VerbTempo, VerbPlay:
	default:
		return Command{}, &ParseError{Verb: fields[0], Reason: "unknown command"}
	}

	if len(fields) < 2 {
		return Command{}, &ParseError{Verb: string(verb), Reason: "missing argument"}
	}

	n, err := strconv.ParseUint(fields[1], 10, 31)
	if err != nil {
		return Command{}, &ParseError{Verb: string(verb), Reason: "invalid argument", Err: err}
	}
	value := int(n)

	switch verb {
	case VerbVolume:
		if value < units.MinVolume || value > units.MaxVolume {
			return Command{}, &ParseError{Verb: string(verb), Reason: fmt.Sprintf("out of range [%g, %g]", units.MinVolume, units.MaxVolume)}
		}
	case VerbTempo:
		if value < units.MinBPM || value > units.MaxBPM {
			return Command{}, &ParseError{Verb: string(verb), Reason: fmt.Sprintf("out of range [%g, %g]", units.MinBPM, units.MaxBPM)}
		}
	case VerbPlay:
		value = sound.FromIndex(value).Index()
	}

	return Command{Verb: verb, Value: value}, nil
}

// Normalize reduces a mode index modulo the number of patterns
func (c Command) Normalize(patterns int) Command {
	if c.Verb == VerbMode && patterns > 0 {
		c.Value %= patterns
	}
	return c
}

// Event converts the command into the control event it requests
func (c Command) Event() Event {
	switch c.Verb {
	case VerbMode:
		return SelectPattern(c.Value)
	case VerbVolume:
		return SetVolume(float64(c.Value))
	case VerbTempo:
		return SetTempo(float64(c.Value))
	case VerbPlay:
		return Play(sound.FromIndex(c.Value))
	default:
		return StopPlayback()
	}
}

// String returns the canonical form, e.g. "tempo 120"
func (c Command) String() string {
	if c.Verb == VerbStop {
		return string(VerbStop)
	}
	return fmt.Sprintf("%s %d", c.Verb, c.Value)
}
