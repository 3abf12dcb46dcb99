// ABOUTME: Control events and the bounded non-blocking event sources
// ABOUTME: Producers never block; the loop polls each source at most once per tick
package control

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
)

// Kind identifies a control event
type Kind int

const (
	TempoDelta Kind = iota
	TempoSet
	VolumeDelta
	VolumeSet
	PatternSelect
	PatternNext
	Trigger
	Stop
)

var kindNames = [...]string{
	TempoDelta:    "tempo-delta",
	TempoSet:      "tempo-set",
	VolumeDelta:   "volume-delta",
	VolumeSet:     "volume-set",
	PatternSelect: "pattern-select",
	PatternNext:   "pattern-next",
	Trigger:       "trigger",
	Stop:          "stop",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Event is a plain control value produced outside the loop
type Event struct {
	Kind       Kind
	Value      float64          // tempo/volume amount
	Index      int              // pattern index
	Instrument sound.Instrument // one-shot trigger
}

func TempoBy(delta float64) Event { return Event{Kind: TempoDelta, Value: delta} }
func SetTempo(bpm float64) Event { return Event{Kind: TempoSet, Value: bpm} }
func VolumeBy(delta float64) Event { return Event{Kind: VolumeDelta, Value: delta} }
func SetVolume(pct float64) Event { return Event{Kind: VolumeSet, Value: pct} }
func SelectPattern(index int) Event { return Event{Kind: PatternSelect, Index: index} }
func NextPattern() Event { return Event{Kind: PatternNext} }
func Play(i sound.Instrument) Event { return Event{Kind: Trigger, Instrument: i} }
func StopPlayback() Event { return Event{Kind: Stop} }

func (e Event) String() string {
	switch e.Kind {
	case TempoDelta, TempoSet, VolumeDelta, VolumeSet:
		return fmt.Sprintf("%s(%g)", e.Kind, e.Value)
	case PatternSelect:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Index)
	case Trigger:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Instrument)
	default:
		return e.Kind.String()
	}
}

// DefaultSourceCapacity bounds each source's queue
const DefaultSourceCapacity = 16

// Source is a single-consumer event queue fed by one producer.
// Stop requests are sticky so a full queue never loses them.
type Source struct {
	name    string
	events  chan Event
	stop    atomic.Bool
	dropped atomic.Int64
}

// NewSource creates a bounded source
func NewSource(name string, capacity int) *Source {
	if capacity <= 0 {
		capacity = DefaultSourceCapacity
	}
	return &Source{
		name:   name,
		events: make(chan Event, capacity),
	}
}

func (s *Source) Name() string {
	return s.name
}

// Send enqueues ev without blocking. It returns false if the queue was full
// and the event was dropped.
func (s *Source) Send(ev Event) bool {
	if ev.Kind == Stop {
		s.stop.Store(true)
		return true
	}

	select {
	case s.events <- ev:
		return true
	default:
		n := s.dropped.Add(1)
		log.Printf("Control source %s full, dropped %s (total dropped: %d)", s.name, ev, n)
		return false
	}
}

// TryReceive returns the next event, or false if nothing is pending
func (s *Source) TryReceive() (Event, bool) {
	if s.stop.Load() {
		return StopPlayback(), true
	}

	select {
	case ev := <-s.events:
		return ev, true
	default:
		return Event{}, false
	}
}

// Dropped returns how many events were discarded because the queue was full
func (s *Source) Dropped() int64 {
	return s.dropped.Load()
}
