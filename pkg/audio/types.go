// ABOUTME: Audio type definitions
// ABOUTME: Defines sample formats and 16-bit fixed-point helpers
package audio

import (
	"math"
	"time"
)

const (
	// 16-bit audio range constants
	MaxInt16 = math.MaxInt16 // 2^15 - 1
	MinInt16 = math.MinInt16 // -2^15

	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes an interleaved PCM stream or sample asset
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// FrameDuration returns the wall time covered by the given number of frames
func (f Format) FrameDuration(frames int) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// FramesIn returns how many whole frames fit in d
func (f Format) FramesIn(d time.Duration) int {
	return int(int64(d) * int64(f.SampleRate) / int64(time.Second))
}

// ClampInt16 saturates a wide accumulator to the 16-bit signed range
func ClampInt16(v int32) int16 {
	if v > MaxInt16 {
		return MaxInt16
	}
	if v < MinInt16 {
		return MinInt16
	}
	return int16(v)
}

// ScaleSample applies gain to a 16-bit sample, rounding half away from zero.
// The result is not clamped so callers can accumulate several voices first.
func ScaleSample(sample int16, gain float64) int32 {
	return int32(math.Round(float64(sample) * gain))
}

// SampleToInt16 converts a 24-bit sample (held in int32) to int16
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit range to 16-bit range
	return int16(sample >> 8)
}

// ToInt16 converts a sample of arbitrary bit depth to int16.
// Depths above 16 are truncated, depths below 16 are left-justified.
func ToInt16(sample int32, bitDepth int) int16 {
	switch {
	case bitDepth == 16:
		return ClampInt16(sample)
	case bitDepth > 16:
		return ClampInt16(sample >> uint(bitDepth-16))
	case bitDepth == 8:
		// 8-bit PCM (WAV) is unsigned
		return int16((sample - 128) << 8)
	case bitDepth > 0:
		return ClampInt16(sample << uint(16-bitDepth))
	default:
		return 0
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}
