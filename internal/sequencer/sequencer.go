// ABOUTME: Beat sequencer converting wall-clock ticks into note triggers
// ABOUTME: Beat time accumulates without wrapping; loops are folded at comparison time
package sequencer

import (
	"fmt"
	"math"
	"time"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/pattern"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/units"
)

// Sequencer tracks the running beat phase of the active pattern.
// It is not safe for concurrent use.
type Sequencer struct {
	pattern *pattern.Pattern

	beat     float64
	anchor   time.Time
	anchored bool

	// edge holds notes sitting exactly on the last interval's end. They were
	// excluded from that tick and fire on the next one.
	edge sound.Set
	// open is true while notes at the current beat have not been accounted
	// for: on a fresh sequencer and after each measured tick, but not after
	// the phase is restored with SetBeat.
	open bool
}

// New creates a sequencer at beat 0 with no anchor
func New(p *pattern.Pattern) *Sequencer {
	return &Sequencer{pattern: p, edge: p.At(0), open: true}
}

// Advance moves beat time forward by the wall time elapsed since the last
// call and returns the instruments with a note in the covered interval.
// The first call only records the anchor.
func (s *Sequencer) Advance(tempo units.Tempo, now time.Time) sound.Set {
	if !s.anchored {
		s.anchor = now
		s.anchored = true
		return 0
	}

	elapsed := now.Sub(s.anchor).Seconds()
	if elapsed <= 0 {
		// Zero elapsed, or the clock went backwards
		if elapsed < 0 {
			s.anchor = now
		}
		return 0
	}

	start := s.beat
	end := start + elapsed*tempo.BeatsPerSecond()

	due := s.edge.Union(s.pattern.Due(start, end))

	s.beat = end
	s.anchor = now
	s.edge = s.pattern.At(end)
	s.open = true
	return due
}

// SetPattern swaps the active pattern, keeping beat time and anchor
func (s *Sequencer) SetPattern(p *pattern.Pattern) {
	s.pattern = p
	if s.open {
		s.edge = p.At(s.beat)
	}
}

func (s *Sequencer) Pattern() *pattern.Pattern {
	return s.pattern
}

// Beat returns the accumulated beat time
func (s *Sequencer) Beat() float64 {
	return s.beat
}

// Position returns the beat time folded into the active loop
func (s *Sequencer) Position() float64 {
	return math.Mod(s.beat, s.pattern.Length())
}

// SetBeat restores a previously snapshotted beat time
func (s *Sequencer) SetBeat(beat float64) error {
	if math.IsNaN(beat) || math.IsInf(beat, 0) || beat < 0 {
		return fmt.Errorf("invalid beat time %v", beat)
	}
	s.beat = beat
	s.edge = 0
	s.open = false
	return nil
}
