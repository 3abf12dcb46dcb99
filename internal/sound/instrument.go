// ABOUTME: Instrument identifiers and instrument sets
// ABOUTME: Closed enum of percussion voices plus a bitmask set type
package sound

import (
	"fmt"
	"strings"
)

// Instrument identifies one percussion sample
type Instrument uint8

const (
	HiHat Instrument = iota
	Snare
	BassDrum

	// NumInstruments is the size of the closed instrument enum
	NumInstruments = 3
)

// All returns every instrument in index order
func All() [NumInstruments]Instrument {
	return [NumInstruments]Instrument{HiHat, Snare, BassDrum}
}

// FromIndex maps any index onto an instrument (modulo the enum size)
func FromIndex(index int) Instrument {
	i := index % NumInstruments
	if i < 0 {
		i += NumInstruments
	}
	return Instrument(i)
}

// Index returns the remote-protocol index of the instrument
func (i Instrument) Index() int {
	return int(i)
}

// Valid reports whether i is a member of the enum
func (i Instrument) Valid() bool {
	return i < NumInstruments
}

func (i Instrument) String() string {
	switch i {
	case HiHat:
		return "hihat"
	case Snare:
		return "snare"
	case BassDrum:
		return "bassdrum"
	default:
		return fmt.Sprintf("instrument(%d)", uint8(i))
	}
}

// Parse accepts an instrument name as written in pattern files
func Parse(name string) (Instrument, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hihat", "hi-hat", "hh":
		return HiHat, nil
	case "snare", "sd":
		return Snare, nil
	case "bassdrum", "bass", "kick", "bd":
		return BassDrum, nil
	default:
		return 0, fmt.Errorf("unknown instrument: %q", name)
	}
}

// Set is a set of instruments
type Set uint8

// SetOf builds a set from the given instruments
func SetOf(instruments ...Instrument) Set {
	var s Set
	for _, i := range instruments {
		s = s.Add(i)
	}
	return s
}

// Add returns s with i included
func (s Set) Add(i Instrument) Set {
	return s | 1<<i
}

// Has reports whether i is in s
func (s Set) Has(i Instrument) bool {
	return s&(1<<i) != 0
}

// Union returns the instruments in either set
func (s Set) Union(other Set) Set {
	return s | other
}

// Empty reports whether no instrument is in s
func (s Set) Empty() bool {
	return s == 0
}

// Len returns the number of instruments in s
func (s Set) Len() int {
	n := 0
	for _, i := range All() {
		if s.Has(i) {
			n++
		}
	}
	return n
}

// Instruments returns the members of s in index order
func (s Set) Instruments() []Instrument {
	var out []Instrument
	for _, i := range All() {
		if s.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

func (s Set) String() string {
	names := make([]string, 0, NumInstruments)
	for _, i := range s.Instruments() {
		names = append(names, i.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}
