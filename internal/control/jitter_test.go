// ABOUTME: Tests for loop jitter statistics
// ABOUTME: Tests window rollover and min/max/avg computation
package control

import (
	"testing"
	"time"
)

func TestJitterSamplerWindow(t *testing.T) {
	j := NewJitterSampler(10 * time.Millisecond)
	base := time.Unix(0, 0)

	if j.Mark(base) {
		t.Fatal("first mark only starts the window")
	}

	offsets := []time.Duration{2, 5, 6}
	for _, ms := range offsets {
		if j.Mark(base.Add(ms * time.Millisecond)) {
			t.Fatal("window closed early")
		}
	}

	if !j.Mark(base.Add(10 * time.Millisecond)) {
		t.Fatal("expected window to close")
	}

	info := j.Latest()
	if info.Count != 4 {
		t.Errorf("expected 4 intervals, got %d", info.Count)
	}
	if info.Min != time.Millisecond {
		t.Errorf("expected min 1ms, got %v", info.Min)
	}
	if info.Max != 4*time.Millisecond {
		t.Errorf("expected max 4ms, got %v", info.Max)
	}
	if info.Avg != 2500*time.Microsecond {
		t.Errorf("expected avg 2.5ms, got %v", info.Avg)
	}
}

func TestJitterSamplerDefaultWindow(t *testing.T) {
	j := NewJitterSampler(0)
	if j.window != DefaultJitterWindow {
		t.Errorf("expected default window, got %v", j.window)
	}
	if j.Latest().Count != 0 {
		t.Error("expected empty summary before the first window")
	}
}
