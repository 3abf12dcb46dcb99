// ABOUTME: Pattern model: named loops of instrument tracks
// ABOUTME: Patterns are validated on construction and immutable afterwards
package pattern

import (
	"fmt"
	"math"
	"sort"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
)

// Track is one instrument's note offsets within a loop, in beats
type Track struct {
	Instrument sound.Instrument
	Offsets    []float64
}

// Pattern is a named loop of tracks
type Pattern struct {
	name   string
	length float64
	tracks []Track
}

// New builds a pattern. Offsets are copied, sorted and de-duplicated; every
// offset must lie in [0, length).
func New(name string, length float64, tracks ...Track) (*Pattern, error) {
	if math.IsNaN(length) || math.IsInf(length, 0) || length <= 0 {
		return nil, fmt.Errorf("pattern %q: loop length must be positive, got %v", name, length)
	}

	p := &Pattern{name: name, length: length}
	for _, t := range tracks {
		if !t.Instrument.Valid() {
			return nil, fmt.Errorf("pattern %q: invalid instrument %d", name, t.Instrument)
		}

		offsets := make([]float64, 0, len(t.Offsets))
		for _, o := range t.Offsets {
			if math.IsNaN(o) || o < 0 || o >= length {
				return nil, fmt.Errorf("pattern %q: %s offset %v outside [0, %v)", name, t.Instrument, o, length)
			}
			offsets = append(offsets, o)
		}
		sort.Float64s(offsets)
		offsets = dedupe(offsets)

		p.tracks = append(p.tracks, Track{Instrument: t.Instrument, Offsets: offsets})
	}

	return p, nil
}

// MustNew is New for built-in patterns
func MustNew(name string, length float64, tracks ...Track) *Pattern {
	p, err := New(name, length, tracks...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) Name() string {
	return p.name
}

// Length returns the loop length in beats
func (p *Pattern) Length() float64 {
	return p.length
}

// Tracks returns a copy of the pattern's tracks
func (p *Pattern) Tracks() []Track {
	out := make([]Track, len(p.tracks))
	for i, t := range p.tracks {
		out[i] = Track{Instrument: t.Instrument, Offsets: append([]float64(nil), t.Offsets...)}
	}
	return out
}

// Instruments returns every instrument with at least one note
func (p *Pattern) Instruments() sound.Set {
	var s sound.Set
	for _, t := range p.tracks {
		if len(t.Offsets) > 0 {
			s = s.Add(t.Instrument)
		}
	}
	return s
}

// Due returns the instruments with a note repetition o+k*length strictly
// inside (start, end). Repetitions exactly on either bound are excluded.
func (p *Pattern) Due(start, end float64) sound.Set {
	var due sound.Set
	if !(end > start) {
		return due
	}

	for _, t := range p.tracks {
		if due.Has(t.Instrument) {
			continue
		}
		for _, o := range t.Offsets {
			if p.between(o, start, end) {
				due = due.Add(t.Instrument)
				break
			}
		}
	}
	return due
}

// At returns the instruments with a note repetition exactly at beat
func (p *Pattern) At(beat float64) sound.Set {
	var on sound.Set
	for _, t := range p.tracks {
		for _, o := range t.Offsets {
			k := math.Round((beat - o) / p.length)
			if o+k*p.length == beat {
				on = on.Add(t.Instrument)
				break
			}
		}
	}
	return on
}

func (p *Pattern) between(o, start, end float64) bool {
	next := o + math.Floor((start-o)/p.length)*p.length
	// first repetition strictly after start; the second bump absorbs rounding
	for i := 0; i < 2 && next <= start; i++ {
		next += p.length
	}
	return next > start && next < end
}

func (p *Pattern) String() string {
	return fmt.Sprintf("%s (%g beats, %d tracks)", p.name, p.length, len(p.tracks))
}

func dedupe(sorted []float64) []float64 {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
