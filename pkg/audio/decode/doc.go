// ABOUTME: Sample asset decoder package for multiple codec support
// ABOUTME: Loads WAV, MP3, FLAC, Ogg Opus and raw PCM files into 16-bit clips
// Package decode turns sample files into 16-bit PCM clips for the instrument bank.
//
// Supports: WAV (8/16/24/32-bit), MP3, FLAC, Ogg Opus and raw s16le PCM.
//
// Decoders never resample. LoadMono rejects assets whose sample rate does
// not match the output device.
//
// Example:
//
//	samples, err := decode.LoadMono("kick.wav", 48000)
package decode
