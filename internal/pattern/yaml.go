// ABOUTME: YAML pattern library loading
// ABOUTME: Decodes pattern files into a validated Library
package pattern

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
)

type fileLibrary struct {
	Patterns []filePattern `yaml:"patterns"`
}

type filePattern struct {
	Name   string      `yaml:"name"`
	Length float64     `yaml:"length"`
	Tracks []fileTrack `yaml:"tracks"`
}

type fileTrack struct {
	Instrument string    `yaml:"instrument"`
	Notes      []float64 `yaml:"notes"`
}

// LoadLibrary reads a YAML pattern library from disk
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern file: %w", err)
	}

	lib, err := ParseLibrary(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// ParseLibrary decodes a YAML pattern library. Unknown fields are rejected.
// A pattern without a length uses DefaultLength.
func ParseLibrary(data []byte) (*Library, error) {
	var file fileLibrary
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode patterns: %w", err)
	}

	patterns := make([]*Pattern, 0, len(file.Patterns))
	for i, fp := range file.Patterns {
		if fp.Name == "" {
			return nil, fmt.Errorf("pattern %d has no name", i)
		}
		length := fp.Length
		if length == 0 {
			length = DefaultLength
		}

		tracks := make([]Track, 0, len(fp.Tracks))
		for _, ft := range fp.Tracks {
			inst, err := sound.Parse(ft.Instrument)
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", fp.Name, err)
			}
			tracks = append(tracks, Track{Instrument: inst, Offsets: ft.Notes})
		}

		p, err := New(fp.Name, length, tracks...)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}

	return NewLibrary(patterns...)
}
