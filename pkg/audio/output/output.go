// ABOUTME: Audio output interface definition
// ABOUTME: Common capacity-reporting interface for audio playback backends
package output

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
)

// ErrClosed is returned by devices after Close
var ErrClosed = errors.New("output device closed")

// Device represents an audio output device
type Device interface {
	// Available returns the number of frames that can be written without blocking
	Available() (int, error)

	// Write queues interleaved 16-bit frames. The caller must not exceed Available.
	Write(frames []int16) error

	// Close releases output resources
	Close() error
}

// Drainer is implemented by devices that can wait for queued audio to play out
type Drainer interface {
	Drain(ctx context.Context) error
}

// Open creates a device for the named backend: "oto", "malgo" or "null"
func Open(backend string, format audio.Format, bufferMs int) (Device, error) {
	switch backend {
	case "", "oto":
		dev, err := NewOto(format, bufferMs)
		if err != nil {
			return nil, err
		}
		return dev, nil
	case "malgo":
		return NewMalgo(format, bufferMs)
	case "null":
		return NewNull(format, bufferMs), nil
	default:
		return nil, fmt.Errorf("unknown output backend: %s (supported: oto, malgo, null)", backend)
	}
}

// drainRing polls until the ring is empty or ctx is done
func drainRing(ctx context.Context, ring *RingBuffer) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for ring.Buffered() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// ringSamples returns the ring size in samples for bufferMs of audio
func ringSamples(format audio.Format, bufferMs int) int {
	if bufferMs <= 0 {
		bufferMs = 100
	}
	n := (format.SampleRate * format.Channels * bufferMs) / 1000
	if n < format.Channels {
		n = format.Channels
	}
	return n
}
