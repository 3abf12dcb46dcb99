// ABOUTME: Scripted in-memory output device
// ABOUTME: Records written frames with caller-controlled capacity and failures
package output

import "sync"

// Memory is an output device whose capacity and failures are set by the caller.
// It records every successful write.
type Memory struct {
	channels  int
	available int
	writeErr  error
	availErr  error

	mu     sync.Mutex
	writes [][]int16
	closed bool
}

// NewMemory creates a memory device with zero initial capacity
func NewMemory(channels int) *Memory {
	return &Memory{channels: channels}
}

// SetAvailable sets the capacity reported by the next Available calls
func (m *Memory) SetAvailable(frames int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = frames
}

// FailWrites makes subsequent writes fail with err (nil restores success)
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// FailAvailable makes subsequent capacity queries fail with err
func (m *Memory) FailAvailable(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availErr = err
}

// Available returns the scripted capacity
func (m *Memory) Available() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}
	if m.availErr != nil {
		return 0, m.availErr
	}
	return m.available, nil
}

// Write records a copy of frames and consumes capacity
func (m *Memory) Write(frames []int16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes = append(m.writes, append([]int16(nil), frames...))
	m.available -= len(frames) / m.channels
	if m.available < 0 {
		m.available = 0
	}
	return nil
}

// Writes returns every recorded write
func (m *Memory) Writes() [][]int16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]int16(nil), m.writes...)
}

// Samples returns all recorded samples concatenated
func (m *Memory) Samples() []int16 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []int16
	for _, w := range m.writes {
		all = append(all, w...)
	}
	return all
}

// Close marks the device closed
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
