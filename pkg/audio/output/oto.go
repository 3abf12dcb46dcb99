// ABOUTME: Oto-based audio output implementation
// ABOUTME: Feeds a persistent oto player from a capacity-reporting ring buffer
package output

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// Oto output implementation using oto library
type Oto struct {
	format audio.Format
	otoCtx *oto.Context
	player *oto.Player
	ring   *RingBuffer

	mu     sync.Mutex
	closed bool
}

// NewOto opens the default playback device through oto.
// bufferMs bounds the ring between the mixer and the player, which is the
// latency the mixer can queue ahead.
func NewOto(format audio.Format, bufferMs int) (*Oto, error) {
	// oto only supports 16-bit output here
	if format.BitDepth != 0 && format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (oto output is 16-bit)", format.BitDepth)
	}
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return nil, fmt.Errorf("invalid output format: %dHz %dch", format.SampleRate, format.Channels)
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	ring := NewRingBuffer(ringSamples(format, bufferMs))

	// Persistent player pulling from the ring; its own buffer is kept small
	// so the ring stays the place where latency is decided.
	player := ctx.NewPlayer(ringReader{ring: ring})
	player.SetBufferSize(ring.Size()) // bytes: half the ring's duration
	player.Play()

	log.Printf("Audio output initialized: %dHz, %d channels (oto, %d sample ring)",
		format.SampleRate, format.Channels, ring.Size())

	return &Oto{
		format: format,
		otoCtx: ctx,
		player: player,
		ring:   ring,
	}, nil
}

// Available returns free capacity in frames
func (o *Oto) Available() (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return 0, ErrClosed
	}
	return o.ring.Free() / o.format.Channels, nil
}

// Write queues interleaved frames into the ring
func (o *Oto) Write(frames []int16) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if err := o.player.Err(); err != nil {
		return fmt.Errorf("oto player failed: %w", err)
	}
	if n := o.ring.Write(frames); n != len(frames) {
		return fmt.Errorf("output overrun: queued %d of %d samples", n, len(frames))
	}
	return nil
}

// Drain waits until everything queued has been handed to the player
func (o *Oto) Drain(ctx context.Context) error {
	return drainRing(ctx, o.ring)
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	var firstErr error
	if err := o.player.Close(); err != nil {
		firstErr = fmt.Errorf("failed to close oto player: %w", err)
	}
	// oto allows one context per process; suspend instead of tearing it down
	if err := o.otoCtx.Suspend(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to suspend oto context: %w", err)
	}
	return firstErr
}
