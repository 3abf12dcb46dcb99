// ABOUTME: Control loop tying events, sequencer and mixer together
// ABOUTME: Polls event sources, advances the sequencer and pumps the mixer each tick
package control

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/mixer"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/pattern"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/sequencer"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/units"
	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio/output"
)

const (
	DefaultPollInterval    = time.Millisecond
	DefaultMaxDeviceErrors = 10
	DefaultStatusInterval  = 100 * time.Millisecond
)

// Config holds control loop configuration
type Config struct {
	Patterns *pattern.Library
	Pattern  int
	Tempo    units.Tempo
	Volume   units.Volume

	PollInterval    time.Duration
	MaxDeviceErrors int

	// OnStatus is called from the loop goroutine, at most once per
	// StatusInterval and after every tick that applied an event. It must not block.
	OnStatus       func(Status)
	StatusInterval time.Duration

	Debug bool
}

// Status is a snapshot of the loop state
type Status struct {
	Tempo        float64
	Volume       float64
	Pattern      string
	PatternIndex int
	Beat         float64
	Position     float64
	Voices       int
	Iterations   uint64
	Frames       int64
	DeviceErrors int
	Jitter       JitterInfo
	Stopped      bool
}

// Loop owns the sequencer, the mixer and the playback state. Step and Run
// must be called from a single goroutine; Status is safe from any goroutine.
type Loop struct {
	config  Config
	seq     *sequencer.Sequencer
	mix     *mixer.Mixer
	dev     output.Device
	sources []*Source

	tempo      units.Tempo
	volume     units.Volume
	patternIdx int
	stopped    bool

	deviceErrors int
	iterations   uint64
	frames       int64

	jitter      *JitterSampler
	status      atomic.Pointer[Status]
	lastPublish time.Time
}

// NewLoop creates a control loop. The mixer and device are owned by the
// loop until Run returns.
func NewLoop(config Config, mix *mixer.Mixer, dev output.Device, sources ...*Source) (*Loop, error) {
	if mix == nil || dev == nil {
		return nil, errors.New("control loop requires a mixer and an output device")
	}
	if config.Patterns == nil {
		config.Patterns = pattern.Builtin()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.MaxDeviceErrors <= 0 {
		config.MaxDeviceErrors = DefaultMaxDeviceErrors
	}
	if config.StatusInterval <= 0 {
		config.StatusInterval = DefaultStatusInterval
	}
	if config.Tempo == (units.Tempo{}) {
		config.Tempo = units.MustTempo(120)
	}

	idx := config.Patterns.Index(config.Pattern)

	l := &Loop{
		config:     config,
		seq:        sequencer.New(config.Patterns.At(idx)),
		mix:        mix,
		dev:        dev,
		sources:    sources,
		tempo:      config.Tempo,
		volume:     config.Volume,
		patternIdx: idx,
		jitter:     NewJitterSampler(DefaultJitterWindow),
	}
	l.status.Store(l.snapshot())

	return l, nil
}

// Step runs one iteration: apply pending events, advance the sequencer,
// start triggered voices and pump the mixer. A device error is returned
// after the rest of the iteration has been applied.
func (l *Loop) Step(now time.Time) error {
	if l.stopped {
		return nil
	}

	var oneShots sound.Set
	applied := false
	for _, src := range l.sources {
		ev, ok := src.TryReceive()
		if !ok {
			continue
		}
		applied = true
		oneShots = oneShots.Union(l.apply(ev))
		if l.stopped {
			break
		}
	}

	if l.stopped {
		// Voices still playing are discarded; the device is drained by its owner
		l.mix.Reset()
		l.publish(now, true)
		log.Printf("Control loop stopped after %d iterations", l.iterations)
		return nil
	}

	due := l.seq.Advance(l.tempo, now).Union(oneShots)
	for _, inst := range due.Instruments() {
		if err := l.mix.Start(inst); err != nil && l.config.Debug {
			log.Printf("Skipping trigger: %v", err)
		}
	}

	n, err := l.mix.Update(l.dev, l.volume.Gain())
	l.iterations++
	l.jitter.Mark(now)
	if err != nil {
		l.deviceErrors++
		l.publish(now, applied)
		return err
	}
	l.deviceErrors = 0
	l.frames += int64(n)

	l.publish(now, applied)
	return nil
}

// Run drives Step from a ticker until a stop event, context cancellation,
// or MaxDeviceErrors consecutive device errors.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.config.PollInterval)
	defer ticker.Stop()

	log.Printf("Control loop running: pattern=%s %s %s poll=%v",
		l.seq.Pattern().Name(), l.tempo, l.volume, l.config.PollInterval)

	for {
		select {
		case <-ctx.Done():
			l.mix.Reset()
			return ctx.Err()

		case now := <-ticker.C:
			if err := l.Step(now); err != nil {
				log.Printf("Output error (%d/%d): %v", l.deviceErrors, l.config.MaxDeviceErrors, err)
				if l.deviceErrors >= l.config.MaxDeviceErrors {
					l.mix.Reset()
					return fmt.Errorf("aborting after %d consecutive device errors: %w", l.deviceErrors, err)
				}
			}
			if l.stopped {
				return nil
			}
		}
	}
}

// apply updates playback state for one event and returns any one-shot trigger
func (l *Loop) apply(ev Event) sound.Set {
	if l.config.Debug {
		log.Printf("Control event: %s", ev)
	}

	switch ev.Kind {
	case TempoDelta:
		l.tempo = l.tempo.Add(ev.Value)

	case TempoSet:
		tempo, err := units.NewTempo(ev.Value)
		if err != nil {
			log.Printf("Ignoring tempo event: %v", err)
			return 0
		}
		l.tempo = tempo

	case VolumeDelta:
		l.volume = l.volume.Add(ev.Value)

	case VolumeSet:
		volume, err := units.NewVolume(ev.Value)
		if err != nil {
			log.Printf("Ignoring volume event: %v", err)
			return 0
		}
		l.volume = volume

	case PatternSelect:
		l.selectPattern(ev.Index)

	case PatternNext:
		l.selectPattern(l.patternIdx + 1)

	case Trigger:
		if ev.Instrument.Valid() {
			return sound.SetOf(ev.Instrument)
		}

	case Stop:
		l.stopped = true
	}

	return 0
}

// selectPattern swaps patterns without touching the beat phase
func (l *Loop) selectPattern(index int) {
	l.patternIdx = l.config.Patterns.Index(index)
	l.seq.SetPattern(l.config.Patterns.At(l.patternIdx))
}

func (l *Loop) publish(now time.Time, force bool) {
	st := l.snapshot()
	l.status.Store(st)

	if l.config.OnStatus == nil {
		return
	}
	if !force && now.Sub(l.lastPublish) < l.config.StatusInterval {
		return
	}
	l.lastPublish = now
	l.config.OnStatus(*st)
}

func (l *Loop) snapshot() *Status {
	return &Status{
		Tempo:        l.tempo.BPM(),
		Volume:       l.volume.Percent(),
		Pattern:      l.seq.Pattern().Name(),
		PatternIndex: l.patternIdx,
		Beat:         l.seq.Beat(),
		Position:     l.seq.Position(),
		Voices:       l.mix.Active(),
		Iterations:   l.iterations,
		Frames:       l.frames,
		DeviceErrors: l.deviceErrors,
		Jitter:       l.jitter.Latest(),
		Stopped:      l.stopped,
	}
}

// Status returns the latest published snapshot
func (l *Loop) Status() Status {
	return *l.status.Load()
}

// Patterns returns the pattern library the loop selects from
func (l *Loop) Patterns() *pattern.Library {
	return l.config.Patterns
}

// Stopped reports whether a stop event has been applied
func (l *Loop) Stopped() bool {
	return l.stopped
}
