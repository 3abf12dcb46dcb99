//go:build malgo

// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo with a callback draining the ring buffer
package output

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	format   audio.Format
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	ring     *RingBuffer
	scratch  []int16

	mu     sync.Mutex
	closed bool
}

// NewMalgo opens the default playback device through miniaudio
func NewMalgo(format audio.Format, bufferMs int) (Device, error) {
	if format.BitDepth != 0 && format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (malgo output is 16-bit)", format.BitDepth)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	m := &Malgo{
		format:   format,
		malgoCtx: ctx,
		ring:     NewRingBuffer(ringSamples(format, bufferMs)),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			m.dataCallback(pOutputSample, frameCount)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("failed to start device: %w", err)
	}
	m.device = device

	log.Printf("Audio output initialized: %dHz, %d channels (malgo/S16, %d sample ring)",
		format.SampleRate, format.Channels, m.ring.Size())

	return m, nil
}

// dataCallback is called by malgo to fill the audio output buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	total := int(frameCount) * m.format.Channels
	if cap(m.scratch) < total {
		m.scratch = make([]int16, total)
	}
	samples := m.scratch[:total]
	m.ring.Read(samples)

	for i, sample := range samples {
		binary.LittleEndian.PutUint16(pOutput[i*2:], uint16(sample))
	}
}

// Available returns free capacity in frames
func (m *Malgo) Available() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}
	return m.ring.Free() / m.format.Channels, nil
}

// Write queues interleaved frames for the callback
func (m *Malgo) Write(frames []int16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if n := m.ring.Write(frames); n != len(frames) {
		return fmt.Errorf("output overrun: queued %d of %d samples", n, len(frames))
	}
	return nil
}

// Drain waits until the callback has consumed everything queued
func (m *Malgo) Drain(ctx context.Context) error {
	return drainRing(ctx, m.ring)
}

// Close stops and uninitializes the device
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if err := m.device.Stop(); err != nil {
		log.Printf("Warning: device stop error: %v", err)
	}
	m.device.Uninit()

	if err := m.malgoCtx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	m.malgoCtx.Free()
	return nil
}
