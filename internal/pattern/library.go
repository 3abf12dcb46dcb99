// ABOUTME: Built-in patterns and the indexed pattern library
// ABOUTME: Library indices wrap so remote "mode N" always selects a pattern
package pattern

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
)

// DefaultLength is the loop length of the built-in patterns
const DefaultLength = 8.0

// Empty is a silent loop
func Empty() *Pattern {
	return MustNew("empty", DefaultLength)
}

// Standard is a straight rock beat
func Standard() *Pattern {
	return MustNew("standard", DefaultLength,
		Track{Instrument: sound.HiHat, Offsets: []float64{0, 2, 4, 6}},
		Track{Instrument: sound.Snare, Offsets: []float64{4}},
		Track{Instrument: sound.BassDrum, Offsets: []float64{0}},
	)
}

// Funky is a syncopated beat with off-beat hi-hats
func Funky() *Pattern {
	return MustNew("funky", DefaultLength,
		Track{Instrument: sound.HiHat, Offsets: []float64{0, 1, 2, 3, 4, 5.5, 6, 7, 7.5}},
		Track{Instrument: sound.Snare, Offsets: []float64{2, 6}},
		Track{Instrument: sound.BassDrum, Offsets: []float64{0, 3, 4, 7}},
	)
}

// Library is an ordered, non-empty list of patterns
type Library struct {
	patterns []*Pattern
}

// NewLibrary builds a library; names must be unique (case-insensitive)
func NewLibrary(patterns ...*Pattern) (*Library, error) {
	if len(patterns) == 0 {
		return nil, errors.New("pattern library is empty")
	}

	seen := make(map[string]bool, len(patterns))
	for i, p := range patterns {
		if p == nil {
			return nil, fmt.Errorf("pattern %d is nil", i)
		}
		key := strings.ToLower(p.Name())
		if seen[key] {
			return nil, fmt.Errorf("duplicate pattern name %q", p.Name())
		}
		seen[key] = true
	}

	return &Library{patterns: append([]*Pattern(nil), patterns...)}, nil
}

// Builtin returns empty, standard and funky, in that index order
func Builtin() *Library {
	lib, _ := NewLibrary(Empty(), Standard(), Funky())
	return lib
}

func (l *Library) Len() int {
	return len(l.patterns)
}

// Index reduces any integer to a valid library index
func (l *Library) Index(i int) int {
	n := len(l.patterns)
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// At returns the pattern at i modulo the library size
func (l *Library) At(i int) *Pattern {
	return l.patterns[l.Index(i)]
}

// Lookup finds a pattern index by name
func (l *Library) Lookup(name string) (int, bool) {
	for i, p := range l.patterns {
		if strings.EqualFold(p.Name(), name) {
			return i, true
		}
	}
	return 0, false
}

// Names returns pattern names in index order
func (l *Library) Names() []string {
	names := make([]string, len(l.patterns))
	for i, p := range l.patterns {
		names[i] = p.Name()
	}
	return names
}
