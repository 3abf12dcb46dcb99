// ABOUTME: Fixed-size ring buffer between the mixer and a pulling audio backend
// ABOUTME: Reports free space so writers never block
package output

import (
	"encoding/binary"
	"sync"
)

// RingBuffer provides thread-safe circular buffer for 16-bit samples
type RingBuffer struct {
	buffer   []int16
	readPos  int
	writePos int
	size     int
	count    int // Number of samples currently in buffer
	mu       sync.Mutex
}

// NewRingBuffer creates a ring buffer with given capacity (in samples)
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{
		buffer: make([]int16, capacity),
		size:   capacity,
	}
}

// Write adds samples to the ring buffer and returns how many fit
func (rb *RingBuffer) Write(samples []int16) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	written := 0
	for i := 0; i < len(samples) && rb.count < rb.size; i++ {
		rb.buffer[rb.writePos] = samples[i]
		rb.writePos = (rb.writePos + 1) % rb.size
		rb.count++
		written++
	}
	return written
}

// Read retrieves samples from the ring buffer, zero-filling on underrun
func (rb *RingBuffer) Read(samples []int16) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	read := 0
	for i := 0; i < len(samples) && rb.count > 0; i++ {
		samples[i] = rb.buffer[rb.readPos]
		rb.readPos = (rb.readPos + 1) % rb.size
		rb.count--
		read++
	}

	for i := read; i < len(samples); i++ {
		samples[i] = 0
	}

	return read
}

// ReadBytes fills p with little-endian s16 samples. It always fills p
// completely (silence on underrun) so pulling players keep running.
func (rb *RingBuffer) ReadBytes(p []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(p) / 2
	for i := 0; i < n; i++ {
		var sample int16
		if rb.count > 0 {
			sample = rb.buffer[rb.readPos]
			rb.readPos = (rb.readPos + 1) % rb.size
			rb.count--
		}
		binary.LittleEndian.PutUint16(p[i*2:], uint16(sample))
	}
	return n * 2
}

// Buffered returns the number of samples waiting to be read
func (rb *RingBuffer) Buffered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Free returns the number of free slots in the buffer
func (rb *RingBuffer) Free() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.size - rb.count
}

// Size returns the capacity in samples
func (rb *RingBuffer) Size() int {
	return rb.size
}

// ringReader adapts a RingBuffer to io.Reader for oto
type ringReader struct {
	ring *RingBuffer
}

func (r ringReader) Read(p []byte) (int, error) {
	// oto asks for whole samples; an odd trailing byte is left for the next call
	if len(p) < 2 {
		return 0, nil
	}
	return r.ring.ReadBytes(p[:len(p)&^1]), nil
}
