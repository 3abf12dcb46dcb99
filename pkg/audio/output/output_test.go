// ABOUTME: Audio output tests
// ABOUTME: Verifies ring accounting and the headless and scripted devices
package output

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
)

func TestDevicesImplementInterfaces(t *testing.T) {
	var _ Device = (*Oto)(nil)
	var _ Device = (*Null)(nil)
	var _ Device = (*Memory)(nil)
	var _ Drainer = (*Oto)(nil)
	var _ Drainer = (*Null)(nil)
}

func TestRingBufferCapacity(t *testing.T) {
	rb := NewRingBuffer(4)

	if rb.Free() != 4 {
		t.Fatalf("expected 4 free, got %d", rb.Free())
	}

	n := rb.Write([]int16{1, 2, 3, 4, 5, 6})
	if n != 4 {
		t.Errorf("expected 4 written, got %d", n)
	}
	if rb.Free() != 0 {
		t.Errorf("expected full ring, got %d free", rb.Free())
	}

	out := make([]int16, 3)
	if read := rb.Read(out); read != 3 {
		t.Errorf("expected 3 read, got %d", read)
	}
	if out[0] != 1 || out[2] != 3 {
		t.Errorf("unexpected read order: %v", out)
	}
	if rb.Buffered() != 1 {
		t.Errorf("expected 1 buffered, got %d", rb.Buffered())
	}
}

func TestRingBufferUnderrunZeroFills(t *testing.T) {
	rb := NewRingBuffer(8)
	rb.Write([]int16{7})

	out := []int16{9, 9, 9}
	if read := rb.Read(out); read != 1 {
		t.Errorf("expected 1 read, got %d", read)
	}
	if out[0] != 7 || out[1] != 0 || out[2] != 0 {
		t.Errorf("expected zero fill after underrun, got %v", out)
	}
}

func TestRingReaderProducesLittleEndian(t *testing.T) {
	rb := NewRingBuffer(8)
	rb.Write([]int16{-2, 258})

	p := make([]byte, 7) // odd length: trailing byte left alone
	n, err := ringReader{ring: rb}.Read(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 6 {
		t.Fatalf("expected 6 bytes, got %d", n)
	}
	if got := int16(binary.LittleEndian.Uint16(p[0:])); got != -2 {
		t.Errorf("expected -2, got %d", got)
	}
	if got := int16(binary.LittleEndian.Uint16(p[2:])); got != 258 {
		t.Errorf("expected 258, got %d", got)
	}
	if got := int16(binary.LittleEndian.Uint16(p[4:])); got != 0 {
		t.Errorf("expected silence, got %d", got)
	}
}

func TestNullPacesAtSampleRate(t *testing.T) {
	format := audio.Format{SampleRate: 1000, Channels: 2, BitDepth: 16}
	dev := NewNull(format, 100) // 100 frames of capacity

	clock := time.Unix(0, 0)
	dev.now = func() time.Time { return clock }

	avail, err := dev.Available()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avail != 100 {
		t.Fatalf("expected 100 frames available, got %d", avail)
	}

	if err := dev.Write(make([]int16, 100*2)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if avail, _ := dev.Available(); avail != 0 {
		t.Errorf("expected full device, got %d", avail)
	}

	clock = clock.Add(30 * time.Millisecond)
	if avail, _ := dev.Available(); avail != 30 {
		t.Errorf("expected 30 frames after 30ms, got %d", avail)
	}

	if dev.Written() != 100 {
		t.Errorf("expected 100 frames written, got %d", dev.Written())
	}
}

func TestNullDrainHonorsContext(t *testing.T) {
	format := audio.Format{SampleRate: 1000, Channels: 1, BitDepth: 16}
	dev := NewNull(format, 1000)
	if err := dev.Write(make([]int16, 1000)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := dev.Drain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestMemoryRecordsWrites(t *testing.T) {
	dev := NewMemory(2)
	dev.SetAvailable(3)

	if err := dev.Write([]int16{1, 1, 2, 2}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if avail, _ := dev.Available(); avail != 1 {
		t.Errorf("expected 1 frame left, got %d", avail)
	}

	boom := errors.New("boom")
	dev.FailWrites(boom)
	if err := dev.Write([]int16{3, 3}); !errors.Is(err, boom) {
		t.Errorf("expected scripted failure, got %v", err)
	}

	if got := dev.Samples(); len(got) != 4 {
		t.Errorf("expected 4 recorded samples, got %v", got)
	}

	dev.Close()
	if _, err := dev.Available(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("jack", audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16}, 100)
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestOpenNullBackend(t *testing.T) {
	dev, err := Open("null", audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer dev.Close()

	avail, err := dev.Available()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avail != 4800 {
		t.Errorf("expected 4800 frames (100ms), got %d", avail)
	}
}
