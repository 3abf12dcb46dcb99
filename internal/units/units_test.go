// ABOUTME: Tests for tempo and volume units
// ABOUTME: Covers range validation and saturating adjustment
package units

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTempoValidatesRange(t *testing.T) {
	_, err := NewTempo(39.9)
	require.Error(t, err)
	_, err = NewTempo(300.1)
	require.Error(t, err)

	tempo, err := NewTempo(120)
	require.NoError(t, err)
	require.Equal(t, 120.0, tempo.BPM())
	require.Equal(t, 2.0, tempo.BeatsPerSecond())
	require.Equal(t, "120bpm", tempo.String())
}

func TestTempoAddClamps(t *testing.T) {
	tempo := MustTempo(290)
	require.Equal(t, MaxBPM, tempo.Add(50).BPM())
	require.Equal(t, MinBPM, tempo.Add(-1000).BPM())
	require.Equal(t, 295.0, tempo.Add(5).BPM())
}

func TestZeroTempoIsNeverZero(t *testing.T) {
	var tempo Tempo
	require.Equal(t, MinBPM, tempo.BPM())
}

func TestVolume(t *testing.T) {
	_, err := NewVolume(-1)
	require.Error(t, err)
	_, err = NewVolume(101)
	require.Error(t, err)

	v := MustVolume(50)
	require.Equal(t, 0.5, v.Gain())
	require.Equal(t, 100.0, v.Add(60).Percent())
	require.Equal(t, 0.0, v.Add(-60).Percent())
	require.Equal(t, "vol:50%", v.String())
}
