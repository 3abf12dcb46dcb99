// ABOUTME: Tests for beatbox application orchestration
// ABOUTME: Tests configuration defaults, sample loading and a full run stopped over UDP
package app

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio/output"
)

func TestApplyDefaults(t *testing.T) {
	config := Config{}
	applyDefaults(&config)

	if config.Name != "beatbox" {
		t.Errorf("expected default name, got %q", config.Name)
	}
	if config.DeviceID == "" {
		t.Error("expected a generated device id")
	}
	if config.SampleRate != 48000 || config.Channels != 2 {
		t.Errorf("unexpected format defaults: %dHz %dch", config.SampleRate, config.Channels)
	}
	if config.Tempo != 120 {
		t.Errorf("expected default tempo 120, got %v", config.Tempo)
	}
}

func TestNewRejectsInvalidUnits(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"tempo", Config{Tempo: 10, Backend: "null"}},
		{"volume", Config{Volume: 150, Backend: "null"}},
		{"backend", Config{Backend: "carrier-pigeon"}},
		{"patterns file", Config{Backend: "null", PatternsFile: "/nonexistent/patterns.yaml"}},
		{"sample file", Config{Backend: "null", Samples: map[sound.Instrument]string{sound.Snare: "/nonexistent/snare.wav"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.config); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadBankUsesRawSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snare.raw")
	// Two little-endian frames: 1, -2
	if err := os.WriteFile(path, []byte{0x01, 0x00, 0xfe, 0xff}, 0o644); err != nil {
		t.Fatal(err)
	}

	bank, err := loadBank(Config{SampleRate: 48000, Samples: map[sound.Instrument]string{sound.Snare: path}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snare, _ := bank.Sample(sound.Snare)
	if len(snare) != 2 || snare[0] != 1 || snare[1] != -2 {
		t.Errorf("unexpected snare sample %v", snare)
	}
	if bank.Loaded() != sound.SetOf(sound.HiHat, sound.Snare, sound.BassDrum) {
		t.Errorf("expected every instrument loaded, got %v", bank.Loaded())
	}
}

func TestRunStopsOnUDPCommand(t *testing.T) {
	format := audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 16}
	dev := output.NewNull(format, 50)

	a, err := New(Config{
		Name:    "test-box",
		Tempo:   240,
		Volume:  50,
		Pattern: 2,
		UDPAddr: "127.0.0.1:0",
		WSAddr:  "127.0.0.1:0",
		Device:  dev,
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	conn, err := net.Dial("udp", a.UDPAddr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Let the loop produce some audio first
	time.Sleep(100 * time.Millisecond)

	if _, err := conn.Write([]byte("stop")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("app did not stop")
	}

	st := a.Status()
	if !st.Stopped {
		t.Error("expected stopped status")
	}
	if st.Pattern != "funky" {
		t.Errorf("expected funky pattern, got %s", st.Pattern)
	}
	if dev.Written() == 0 {
		t.Error("expected audio to be written")
	}
	if _, err := dev.Available(); err == nil {
		t.Error("expected device to be closed")
	}
}
