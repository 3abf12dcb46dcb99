// ABOUTME: Clip type and file loader dispatch
// ABOUTME: Picks a decoder by extension and enforces the device sample rate
package decode

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
)

// Clip is a fully decoded sample asset
type Clip struct {
	Format  audio.Format
	Samples []int16 // interleaved
}

// Frames returns the clip length in frames
func (c *Clip) Frames() int {
	if c.Format.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Format.Channels
}

// Mono returns the first channel of the clip
func (c *Clip) Mono() []int16 {
	if c.Format.Channels <= 1 {
		return c.Samples
	}
	mono := make([]int16, c.Frames())
	for i := range mono {
		mono[i] = c.Samples[i*c.Format.Channels]
	}
	return mono
}

// Load decodes a sample file, choosing the decoder from the extension.
// Raw .raw/.pcm files carry no header and are read as 16-bit mono at rawRate.
func Load(path string, rawRate int) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav":
		return DecodeWAV(bytes.NewReader(data))
	case ".mp3":
		return DecodeMP3(bytes.NewReader(data))
	case ".flac":
		return DecodeFLAC(bytes.NewReader(data))
	case ".opus", ".ogg":
		return DecodeOpus(data)
	case ".raw", ".pcm":
		return DecodePCM(data, audio.Format{
			Codec:      "pcm",
			SampleRate: rawRate,
			Channels:   1,
			BitDepth:   16,
		})
	default:
		return nil, fmt.Errorf("unsupported sample format: %s (supported: .wav, .mp3, .flac, .opus, .raw)", ext)
	}
}

// LoadMono loads a sample file as a mono buffer at sampleRate.
// Multichannel files contribute their first channel.
func LoadMono(path string, sampleRate int) ([]int16, error) {
	clip, err := Load(path, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if clip.Format.SampleRate != sampleRate {
		return nil, fmt.Errorf("%s: sample rate %dHz does not match output rate %dHz",
			path, clip.Format.SampleRate, sampleRate)
	}
	if clip.Frames() == 0 {
		return nil, fmt.Errorf("%s: sample is empty", path)
	}

	log.Printf("Loaded sample %s: %s %dHz %dch %d-bit, %d frames",
		filepath.Base(path), clip.Format.Codec, clip.Format.SampleRate,
		clip.Format.Channels, clip.Format.BitDepth, clip.Frames())

	return clip.Mono(), nil
}
