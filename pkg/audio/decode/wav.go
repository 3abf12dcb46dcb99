// ABOUTME: WAV sample decoder
// ABOUTME: Decodes RIFF/WAVE files via go-audio/wav
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
	"github.com/go-audio/wav"
)

// DecodeWAV decodes a complete WAV file
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV: %w", err)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		return nil, fmt.Errorf("unknown bit depth for WAV file")
	}

	format := audio.Format{
		Codec:      "wav",
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		BitDepth:   bitDepth,
	}
	if format.Channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", format.Channels)
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = audio.ToInt16(int32(v), bitDepth)
	}

	return &Clip{Format: format, Samples: samples}, nil
}
