package terminal

import (
	"bytes"
	"testing"
	"time"

	"github.com/mgoltzsche/tts-studio/internal/studio"
	"github.com/stretchr/testify/require"
)

func TestViewResult(t *testing.T) {
	var out bytes.Buffer
	testee := &View{Out: &out, Input: studio.Input{Text: "hello", Voice: "Fritz-PlayAI"}}

	require.Equal(t, studio.Input{Text: "hello", Voice: "Fritz-PlayAI"}, testee.Inputs())

	testee.RenderCredential(true)
	testee.RenderVoices("playai-tts-arabic", []string{"Ahmad-PlayAI", "Amira-PlayAI"}, "Ahmad-PlayAI")
	testee.RenderCharCount("5 / 10,000 characters")
	testee.RenderState(studio.Loading)
	testee.RenderLoading()

	select {
	case <-testee.Done():
		t.Fatal("done before the request completed")
	default:
	}

	g := studio.Generation{GenerationTime: "1.23s", FileSize: "56.8 KB", Duration: 2040 * time.Millisecond}
	testee.RenderState(studio.Result)
	testee.RenderResult(g)

	<-testee.Done()
	require.Equal(t, &g, testee.Result())
	require.Equal(t, "API key: configured\n"+
		"Model: playai-tts-arabic, voices: Ahmad-PlayAI, Amira-PlayAI\n"+
		"Text: 5 / 10,000 characters\n"+
		"Generating speech...\n"+
		"Generated speech in 1.23s, size: 56.8 KB, duration: 2s\n", out.String())
}

func TestViewError(t *testing.T) {
	var out bytes.Buffer
	testee := &View{Out: &out}

	testee.RenderState(studio.Error)
	testee.RenderError("Please enter some text")

	select {
	case <-testee.Done():
		t.Fatal("done without a request in flight")
	default:
	}

	testee.RenderState(studio.Loading)
	testee.RenderState(studio.Error)
	testee.RenderError("bad voice")
	testee.HideError()

	<-testee.Done()
	require.Nil(t, testee.Result())
	require.Equal(t, "bad voice", testee.Error())
	require.Equal(t, "Error: Please enter some text\nError: bad voice\n", out.String())
}
