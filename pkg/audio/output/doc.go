// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the capacity-reporting Device interface and its backends
// Package output provides audio output devices for the mixer.
//
// Every device reports how many frames it can accept right now, so callers
// never block on a write:
//
//	dev, err := output.NewOto(format, 100)
//	n, err := dev.Available()
//	err = dev.Write(frames[:n*format.Channels])
//
// Backends: Oto (default), Malgo (build with -tags malgo), Null (paces at
// real time and discards) and Memory (scripted, for tests).
package output
