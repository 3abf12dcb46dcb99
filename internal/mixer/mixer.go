// ABOUTME: Polyphonic voice mixer feeding a capacity-reporting output device
// ABOUTME: Mixes active voices with saturation and writes at most what the device accepts
package mixer

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio/output"
)

// DefaultChunkSize is the default maximum number of frames per Update
const DefaultChunkSize = 256

// ErrNoSample is returned when starting an instrument the bank has no sample for
var ErrNoSample = errors.New("no sample loaded for instrument")

type voice struct {
	instrument sound.Instrument
	sample     []int16
	cursor     int
}

// Mixer owns the active voices. It is not safe for concurrent use.
type Mixer struct {
	bank     *sound.Bank
	channels int
	chunk    int

	voices []voice

	acc []int32
	buf []int16
}

// New creates a mixer producing interleaved frames for the given channel count
func New(bank *sound.Bank, channels, chunkSize int) (*Mixer, error) {
	if bank == nil {
		return nil, errors.New("mixer requires a sample bank")
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &Mixer{
		bank:     bank,
		channels: channels,
		chunk:    chunkSize,
		acc:      make([]int32, chunkSize),
		buf:      make([]int16, chunkSize*channels),
	}, nil
}

// Start adds a voice for the instrument at the beginning of its sample
func (m *Mixer) Start(i sound.Instrument) error {
	sample, ok := m.bank.Sample(i)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSample, i)
	}
	m.voices = append(m.voices, voice{instrument: i, sample: sample})
	return nil
}

// Update mixes and writes min(chunk size, device capacity) frames and
// returns the number of frames written. Zero capacity is a no-op. If the
// write fails no voice advances, so the same audio is produced next time.
func (m *Mixer) Update(dev output.Device, gain float64) (int, error) {
	avail, err := dev.Available()
	if err != nil {
		return 0, fmt.Errorf("failed to query output capacity: %w", err)
	}

	frames := min(m.chunk, avail)
	if frames <= 0 {
		return 0, nil
	}

	acc := m.acc[:frames]
	clear(acc)

	for _, v := range m.voices {
		n := min(frames, len(v.sample)-v.cursor)
		src := v.sample[v.cursor : v.cursor+n]
		for j, s := range src {
			acc[j] += audio.ScaleSample(s, gain)
		}
	}

	buf := m.buf[:frames*m.channels]
	for j, sum := range acc {
		s := audio.ClampInt16(sum)
		for c := 0; c < m.channels; c++ {
			buf[j*m.channels+c] = s
		}
	}

	if err := dev.Write(buf); err != nil {
		return 0, fmt.Errorf("failed to write %d frames: %w", frames, err)
	}

	m.commit(frames)
	return frames, nil
}

// commit advances every voice and drops the ones that reached their end
func (m *Mixer) commit(frames int) {
	kept := m.voices[:0]
	for _, v := range m.voices {
		v.cursor += frames
		if v.cursor < len(v.sample) {
			kept = append(kept, v)
		}
	}
	clear(m.voices[len(kept):])
	m.voices = kept
}

// Active returns the number of playing voices
func (m *Mixer) Active() int {
	return len(m.voices)
}

// Reset discards every voice
func (m *Mixer) Reset() {
	clear(m.voices)
	m.voices = m.voices[:0]
}

// Channels returns the output channel count
func (m *Mixer) Channels() int {
	return m.channels
}

// ChunkSize returns the maximum frames produced per Update
func (m *Mixer) ChunkSize() int {
	return m.chunk
}
