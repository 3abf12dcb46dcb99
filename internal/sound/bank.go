// ABOUTME: Immutable instrument-to-sample table
// ABOUTME: Fixed array indexed by instrument, populated once before playback
package sound

import (
	"fmt"
	"math"
)

// Bank maps each instrument to its mono 16-bit sample.
// A Bank is read-only after construction; voices share its buffers.
type Bank struct {
	samples [NumInstruments][]int16
}

// NewBank copies the given samples into a new bank
func NewBank(samples map[Instrument][]int16) (*Bank, error) {
	b := &Bank{}
	for inst, data := range samples {
		if !inst.Valid() {
			return nil, fmt.Errorf("invalid instrument: %v", inst)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("empty sample for %v", inst)
		}
		b.samples[inst] = append([]int16(nil), data...)
	}
	return b, nil
}

// Sample returns the buffer for i and whether one is loaded.
// The returned slice must not be modified.
func (b *Bank) Sample(i Instrument) ([]int16, bool) {
	if !i.Valid() {
		return nil, false
	}
	s := b.samples[i]
	return s, len(s) > 0
}

// Loaded returns the set of instruments that have a sample
func (b *Bank) Loaded() Set {
	var s Set
	for _, i := range All() {
		if len(b.samples[i]) > 0 {
			s = s.Add(i)
		}
	}
	return s
}

// Synthesize renders a short built-in hit for each instrument so the device
// can run without sample files. Output is deterministic.
func Synthesize(sampleRate int) map[Instrument][]int16 {
	return map[Instrument][]int16{
		HiHat:    synthHiHat(sampleRate),
		Snare:    synthSnare(sampleRate),
		BassDrum: synthKick(sampleRate),
	}
}

func synthKick(rate int) []int16 {
	n := rate * 300 / 1000
	out := make([]int16, n)
	phase := 0.0
	for i := range out {
		t := float64(i) / float64(rate)
		freq := 50 + 100*math.Exp(-t*30)
		phase += 2 * math.Pi * freq / float64(rate)
		env := math.Exp(-t * 8)
		out[i] = int16(math.Sin(phase) * env * 0.9 * math.MaxInt16)
	}
	return out
}

func synthSnare(rate int) []int16 {
	n := rate * 200 / 1000
	out := make([]int16, n)
	noise := newNoise(0x5eed)
	for i := range out {
		t := float64(i) / float64(rate)
		tone := math.Sin(2*math.Pi*180*t) * math.Exp(-t*20)
		env := math.Exp(-t * 18)
		out[i] = int16((0.5*tone + 0.5*noise()*env) * 0.8 * math.MaxInt16)
	}
	return out
}

func synthHiHat(rate int) []int16 {
	n := rate * 60 / 1000
	out := make([]int16, n)
	noise := newNoise(0xbeef)
	prev := 0.0
	for i := range out {
		t := float64(i) / float64(rate)
		v := noise()
		// crude high-pass: difference of successive noise values
		hp := v - prev
		prev = v
		out[i] = int16(hp * 0.5 * math.Exp(-t*60) * 0.6 * math.MaxInt16)
	}
	return out
}

// newNoise returns a deterministic white noise source in [-1, 1]
func newNoise(seed uint32) func() float64 {
	state := seed
	return func() float64 {
		// xorshift32
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return float64(state)/float64(math.MaxUint32)*2 - 1
	}
}
