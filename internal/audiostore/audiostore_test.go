package audiostore

import (
	"testing"
	"time"

	"github.com/mgoltzsche/tts-studio/internal/soundgen"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	wavData, err := (&soundgen.Generator{SampleRate: 16000}).Tone(500, time.Second)
	require.NoError(t, err)

	testee := New()

	asset, err := testee.Put(wavData, "")
	require.NoError(t, err)
	require.NotEmpty(t, asset.ID)
	require.Equal(t, "audio/wav", asset.ContentType)
	require.Equal(t, len(wavData), asset.Size)
	require.InDelta(t, float64(time.Second), float64(asset.Duration), float64(10*time.Millisecond))
	require.Equal(t, 1, testee.Len())

	data, stored, ok := testee.Get(asset.ID)
	require.True(t, ok)
	require.Equal(t, asset, stored)
	require.Equal(t, wavData, data)

	testee.Release(asset.ID)
	testee.Release(asset.ID)

	_, _, ok = testee.Get(asset.ID)
	require.False(t, ok, "found after release")
	require.Equal(t, 0, testee.Len())
}

func TestStoreNonWaveAudio(t *testing.T) {
	testee := New()

	asset, err := testee.Put([]byte("ID3 mp3 data"), "audio/mpeg")
	require.NoError(t, err)
	require.Equal(t, "audio/mpeg", asset.ContentType)
	require.Zero(t, asset.Duration)

	_, err = testee.Put(nil, "audio/wav")
	require.Error(t, err)
}
