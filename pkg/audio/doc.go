// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and 16-bit fixed-point sample helpers
// Package audio provides fundamental audio types and utilities for the beatbox.
//
// The mixer works on signed 16-bit samples. This package holds the shared
// arithmetic for that path:
//   - ScaleSample: gain with round-half-away-from-zero
//   - ClampInt16: saturation of a wide accumulator to the 16-bit range
//   - ToInt16 / SampleToInt16: bit depth conversions used by the decoders
//
// Example:
//
//	acc := audio.ScaleSample(a, gain) + audio.ScaleSample(b, gain)
//	out := audio.ClampInt16(acc)
package audio
