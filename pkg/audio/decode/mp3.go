// ABOUTME: MP3 sample decoder
// ABOUTME: Decodes MP3 files to 16-bit stereo clips via go-mp3
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 decodes a complete MP3 stream
func DecodeMP3(r io.Reader) (*Clip, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	// MP3 decoder outputs 16-bit little-endian stereo
	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	samples = samples[:len(samples)-len(samples)%2]

	return &Clip{
		Format: audio.Format{
			Codec:      "mp3",
			SampleRate: decoder.SampleRate(),
			Channels:   2,
			BitDepth:   16,
		},
		Samples: samples,
	}, nil
}
