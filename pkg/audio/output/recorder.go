// ABOUTME: Output wrapper that records everything written to a WAV file
// ABOUTME: Lets the mix be captured to disk alongside live playback
package output

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
)

// Recorder forwards to an inner device and appends successful writes to a
// 16-bit PCM WAV file. The file header is finalized on Close. A recording
// failure never fails a write the inner device accepted; recording stops and
// the failure is reported by Close.
type Recorder struct {
	Device

	mu     sync.Mutex
	file   *os.File
	enc    *wav.Encoder
	buf    *goaudio.IntBuffer
	frames int64
	closed bool
	err    error
}

// NewRecorder wraps dev, recording into path
func NewRecorder(dev Device, format audio.Format, path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	return &Recorder{
		Device: dev,
		file:   f,
		enc:    wav.NewEncoder(f, format.SampleRate, 16, format.Channels, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
			SourceBitDepth: 16,
		},
	}, nil
}

// Write forwards frames and records them once the device accepted them
func (r *Recorder) Write(frames []int16) error {
	if err := r.Device.Write(frames); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.err != nil {
		return nil
	}

	data := r.buf.Data[:0]
	for _, s := range frames {
		data = append(data, int(s))
	}
	r.buf.Data = data

	if err := r.enc.Write(r.buf); err != nil {
		r.err = fmt.Errorf("failed to record audio: %w", err)
		log.Printf("Recording stopped: %v", r.err)
		return nil
	}
	r.frames += int64(len(frames) / r.buf.Format.NumChannels)
	return nil
}

// Frames returns the number of recorded frames
func (r *Recorder) Frames() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Drain waits for the inner device if it supports draining
func (r *Recorder) Drain(ctx context.Context) error {
	if d, ok := r.Device.(Drainer); ok {
		return d.Drain(ctx)
	}
	return nil
}

// Close finalizes the recording and closes the inner device
func (r *Recorder) Close() error {
	r.mu.Lock()
	var recErr error
	if !r.closed {
		r.closed = true
		recErr = r.err
		if recErr == nil {
			if err := r.enc.Close(); err != nil {
				recErr = fmt.Errorf("failed to finalize recording: %w", err)
			}
		}
		if err := r.file.Close(); err != nil && recErr == nil {
			recErr = err
		}
	}
	r.mu.Unlock()

	if err := r.Device.Close(); err != nil {
		return err
	}
	return recErr
}
