// ABOUTME: Headless output that consumes audio at the real-time rate
// ABOUTME: Lets the beatbox run without a sound card while keeping back-pressure
package output

import (
	"context"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
)

// Null discards audio but reports capacity as if a device were playing it
type Null struct {
	format   audio.Format
	capacity int // frames
	buffered int // frames not yet "played"
	last     time.Time
	now      func() time.Time

	mu     sync.Mutex
	closed bool

	written int64
}

// NewNull creates a device that plays out format.SampleRate frames per second
func NewNull(format audio.Format, bufferMs int) *Null {
	capacity := ringSamples(format, bufferMs) / format.Channels
	return &Null{
		format:   format,
		capacity: capacity,
		now:      time.Now,
	}
}

// consume advances the simulated playback position (must hold n.mu)
func (n *Null) consume() {
	now := n.now()
	if n.last.IsZero() {
		n.last = now
		return
	}
	played := n.format.FramesIn(now.Sub(n.last))
	if played <= 0 {
		return
	}
	// Keep the remainder of a partial frame for the next call
	n.last = n.last.Add(n.format.FrameDuration(played))
	n.buffered -= played
	if n.buffered < 0 {
		n.buffered = 0
	}
}

// Available returns free capacity in frames
func (n *Null) Available() (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return 0, ErrClosed
	}
	n.consume()
	return n.capacity - n.buffered, nil
}

// Write accounts for the frames and drops them
func (n *Null) Write(frames []int16) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}
	n.consume()
	count := len(frames) / n.format.Channels
	n.buffered += count
	n.written += int64(count)
	return nil
}

// Written returns the total number of frames accepted
func (n *Null) Written() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.written
}

// Drain waits for the simulated queue to play out
func (n *Null) Drain(ctx context.Context) error {
	n.mu.Lock()
	n.consume()
	wait := n.format.FrameDuration(n.buffered)
	n.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close releases output resources
func (n *Null) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	return nil
}
