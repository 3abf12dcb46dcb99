// ABOUTME: Validated playback units: tempo and volume
// ABOUTME: Range-checked constructors and saturating adjustment
package units

import (
	"fmt"
	"math"
)

const (
	MinBPM = 40.0
	MaxBPM = 300.0

	MinVolume = 0.0
	MaxVolume = 100.0
)

// Tempo is a validated tempo in beats per minute
type Tempo struct {
	bpm float64
}

// NewTempo validates bpm against [MinBPM, MaxBPM]
func NewTempo(bpm float64) (Tempo, error) {
	if math.IsNaN(bpm) || bpm < MinBPM || bpm > MaxBPM {
		return Tempo{}, fmt.Errorf("tempo %v out of range [%v, %v]", bpm, MinBPM, MaxBPM)
	}
	return Tempo{bpm: bpm}, nil
}

// MustTempo is NewTempo for constants
func MustTempo(bpm float64) Tempo {
	t, err := NewTempo(bpm)
	if err != nil {
		panic(err)
	}
	return t
}

// BPM returns the tempo in beats per minute
func (t Tempo) BPM() float64 {
	if t.bpm == 0 {
		return MinBPM
	}
	return t.bpm
}

// BeatsPerSecond returns bpm/60
func (t Tempo) BeatsPerSecond() float64 {
	return t.BPM() / 60
}

// Add returns t adjusted by delta, clamped to the valid range
func (t Tempo) Add(delta float64) Tempo {
	return Tempo{bpm: clamp(t.BPM()+delta, MinBPM, MaxBPM)}
}

func (t Tempo) String() string {
	return fmt.Sprintf("%gbpm", t.BPM())
}

// Volume is a validated volume in percent
type Volume struct {
	percent float64
}

// NewVolume validates percent against [0, 100]
func NewVolume(percent float64) (Volume, error) {
	if math.IsNaN(percent) || percent < MinVolume || percent > MaxVolume {
		return Volume{}, fmt.Errorf("volume %v out of range [%v, %v]", percent, MinVolume, MaxVolume)
	}
	return Volume{percent: percent}, nil
}

// MustVolume is NewVolume for constants
func MustVolume(percent float64) Volume {
	v, err := NewVolume(percent)
	if err != nil {
		panic(err)
	}
	return v
}

// Percent returns the volume in [0, 100]
func (v Volume) Percent() float64 {
	return v.percent
}

// Gain returns the volume as a linear gain in [0, 1]
func (v Volume) Gain() float64 {
	return v.percent / 100
}

// Add returns v adjusted by delta percent, clamped to the valid range
func (v Volume) Add(delta float64) Volume {
	return Volume{percent: clamp(v.percent+delta, MinVolume, MaxVolume)}
}

func (v Volume) String() string {
	return fmt.Sprintf("vol:%g%%", v.percent)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
