package soundgen

import (
	"bytes"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

func TestTone(t *testing.T) {
	testee := &Generator{SampleRate: 8000}

	b, err := testee.Tone(440, 250*time.Millisecond)
	require.NoError(t, err)

	decoder := wav.NewDecoder(bytes.NewReader(b))
	decoder.ReadInfo()
	require.NoError(t, decoder.Err())
	require.True(t, decoder.IsValidFile(), "valid wav")
	require.Equal(t, uint32(8000), decoder.SampleRate)
	require.Equal(t, uint16(1), decoder.NumChans)

	d, err := decoder.Duration()
	require.NoError(t, err)
	require.InDelta(t, float64(250*time.Millisecond), float64(d), float64(10*time.Millisecond))
}
