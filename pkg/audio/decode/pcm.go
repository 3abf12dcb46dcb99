// ABOUTME: Raw PCM audio decoder
// ABOUTME: Decodes headerless 16-bit and 24-bit little-endian PCM
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
)

// DecodePCM converts raw little-endian PCM bytes in the given format
func DecodePCM(data []byte, format audio.Format) (*Clip, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("invalid codec for PCM decoder: %s", format.Codec)
	}
	if format.Channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", format.Channels)
	}

	var samples []int16
	switch format.BitDepth {
	case 16:
		// 16-bit PCM: 2 bytes per sample
		samples = make([]int16, len(data)/2)
		for i := range samples {
			samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case 24:
		// 24-bit PCM: 3 bytes per sample
		samples = make([]int16, len(data)/3)
		for i := range samples {
			b := [3]byte{data[i*3], data[i*3+1], data[i*3+2]}
			samples[i] = audio.SampleToInt16(audio.SampleFrom24Bit(b))
		}
	default:
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}

	// Drop a trailing partial frame
	samples = samples[:len(samples)-len(samples)%format.Channels]

	return &Clip{Format: format, Samples: samples}, nil
}
