// ABOUTME: FLAC sample decoder
// ABOUTME: Decodes FLAC files frame by frame via mewkiz/flac
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
	"github.com/mewkiz/flac"
)

// DecodeFLAC decodes a complete FLAC stream
func DecodeFLAC(r io.Reader) (*Clip, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	format := audio.Format{
		Codec:      "flac",
		SampleRate: int(stream.Info.SampleRate),
		Channels:   int(stream.Info.NChannels),
		BitDepth:   int(stream.Info.BitsPerSample),
	}
	if format.Channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", format.Channels)
	}

	var samples []int16
	for {
		f, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flac frame error: %w", err)
		}

		// Interleave subframes
		n := int(f.BlockSize)
		for i := 0; i < n; i++ {
			for ch := 0; ch < format.Channels; ch++ {
				samples = append(samples, audio.ToInt16(f.Subframes[ch].Samples[i], format.BitDepth))
			}
		}
	}

	return &Clip{Format: format, Samples: samples}, nil
}
