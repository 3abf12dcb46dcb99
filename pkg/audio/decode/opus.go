// ABOUTME: Ogg Opus sample decoder
// ABOUTME: Decodes .opus files via libopusfile bindings
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// Opus always decodes at 48kHz
const opusSampleRate = 48000

// DecodeOpus decodes a complete Ogg Opus file
func DecodeOpus(data []byte) (*Clip, error) {
	channels, err := opusChannels(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open opus stream: %w", err)
	}
	defer stream.Close()

	// Max frame size: 120ms at 48kHz
	pcm := make([]int16, 5760*channels)
	var samples []int16
	for {
		n, err := stream.Read(pcm)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("opus decode failed: %w", err)
		}
		samples = append(samples, pcm[:n*channels]...)
	}

	return &Clip{
		Format: audio.Format{
			Codec:      "opus",
			SampleRate: opusSampleRate,
			Channels:   channels,
			BitDepth:   16,
		},
		Samples: samples,
	}, nil
}

// opusChannels reads the channel count from the OpusHead identification header
func opusChannels(data []byte) (int, error) {
	idx := bytes.Index(data, []byte("OpusHead"))
	if idx < 0 || len(data) < idx+10 {
		return 0, fmt.Errorf("not an Ogg Opus file: missing OpusHead")
	}
	channels := int(data[idx+9])
	if channels < 1 || channels > 2 {
		return 0, fmt.Errorf("unsupported opus channel count: %d", channels)
	}
	return channels, nil
}
