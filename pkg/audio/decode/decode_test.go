// ABOUTME: Tests for sample decoders
// ABOUTME: Tests raw PCM, WAV and loader dispatch with generated files
package decode

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeWAV(t *testing.T, path string, rate, channels int, data []int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalize wav: %v", err)
	}
}

func TestDecodePCM16Bit(t *testing.T) {
	format := audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 1, BitDepth: 16}

	// 0x0100 = 256, 0xFFFE = -2
	clip, err := DecodePCM([]byte{0x00, 0x01, 0xFE, 0xFF}, format)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(clip.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(clip.Samples))
	}
	if clip.Samples[0] != 256 || clip.Samples[1] != -2 {
		t.Errorf("unexpected samples: %v", clip.Samples)
	}
}

func TestDecodePCM24Bit(t *testing.T) {
	format := audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 1, BitDepth: 24}

	// 0x123456 -> 0x1234 after dropping the low byte
	clip, err := DecodePCM([]byte{0x56, 0x34, 0x12}, format)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if clip.Samples[0] != 0x1234 {
		t.Errorf("expected %d, got %d", 0x1234, clip.Samples[0])
	}
}

func TestDecodePCMRejectsBadFormat(t *testing.T) {
	_, err := DecodePCM(nil, audio.Format{Codec: "opus", Channels: 1, BitDepth: 16})
	if err == nil || err.Error() != "invalid codec for PCM decoder: opus" {
		t.Errorf("expected invalid codec error, got %v", err)
	}

	_, err = DecodePCM(nil, audio.Format{Codec: "pcm", Channels: 1, BitDepth: 12})
	if err == nil {
		t.Error("expected unsupported bit depth error")
	}
}

func TestDecodePCMDropsPartialFrame(t *testing.T) {
	format := audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 16}

	clip, err := DecodePCM([]byte{1, 0, 2, 0, 3, 0}, format)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if clip.Frames() != 1 || len(clip.Samples) != 2 {
		t.Errorf("expected one whole frame, got %v", clip.Samples)
	}
}

func TestClipMonoTakesFirstChannel(t *testing.T) {
	clip := &Clip{
		Format:  audio.Format{Channels: 2},
		Samples: []int16{1, 100, 2, 200, 3, 300},
	}

	mono := clip.Mono()
	if len(mono) != 3 || mono[0] != 1 || mono[1] != 2 || mono[2] != 3 {
		t.Errorf("unexpected mono samples: %v", mono)
	}
}

func TestLoadWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snare.wav")
	writeWAV(t, path, 48000, 2, []int{100, -100, -200, 200, 32767, 0})

	samples, err := LoadMono(path, 48000)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	expected := []int16{100, -200, 32767}
	if len(samples) != len(expected) {
		t.Fatalf("expected %d frames, got %d", len(expected), len(samples))
	}
	for i := range expected {
		if samples[i] != expected[i] {
			t.Errorf("frame %d: expected %d, got %d", i, expected[i], samples[i])
		}
	}
}

func TestLoadMonoRejectsRateMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kick.wav")
	writeWAV(t, path, 44100, 1, []int{1, 2, 3})

	_, err := LoadMono(path, 48000)
	if err == nil {
		t.Fatal("expected sample rate mismatch error")
	}
	if !strings.Contains(err.Error(), "does not match output rate") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadRawUsesRequestedRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hat.raw")
	if err := os.WriteFile(path, []byte{0x10, 0x00, 0x20, 0x00}, 0o644); err != nil {
		t.Fatalf("failed to write raw file: %v", err)
	}

	samples, err := LoadMono(path, 22050)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(samples) != 2 || samples[0] != 0x10 || samples[1] != 0x20 {
		t.Errorf("unexpected samples: %v", samples)
	}
}

func TestLoadRejectsEmptyAndUnknown(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.raw")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := LoadMono(empty, 48000); err == nil {
		t.Error("expected error for empty sample")
	}

	unknown := filepath.Join(dir, "sample.aiff")
	if err := os.WriteFile(unknown, []byte{0}, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := Load(unknown, 48000); err == nil {
		t.Error("expected error for unsupported extension")
	}

	if _, err := Load(filepath.Join(dir, "missing.wav"), 48000); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOpusChannels(t *testing.T) {
	head := append([]byte("OggS....OpusHead"), 1, 2, 0, 0)
	channels, err := opusChannels(head)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channels != 2 {
		t.Errorf("expected 2 channels, got %d", channels)
	}

	if _, err := opusChannels([]byte("RIFF....WAVE")); err == nil {
		t.Error("expected error for non-opus data")
	}
}

func TestDecodeInvalidData(t *testing.T) {
	if _, err := DecodeFLAC(strings.NewReader("not flac")); err == nil {
		t.Error("expected FLAC error for garbage input")
	}
	if _, err := DecodeOpus([]byte("not opus")); err == nil {
		t.Error("expected Opus error for garbage input")
	}
}
