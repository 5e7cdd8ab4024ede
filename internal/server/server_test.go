package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/mgoltzsche/tts-studio/internal/audiostore"
	"github.com/mgoltzsche/tts-studio/internal/credential"
	"github.com/mgoltzsche/tts-studio/internal/soundgen"
	"github.com/mgoltzsche/tts-studio/internal/storage"
	"github.com/mgoltzsche/tts-studio/internal/studio"
	"github.com/mgoltzsche/tts-studio/internal/tts"
	"github.com/mgoltzsche/tts-studio/internal/voices"
	"github.com/mgoltzsche/tts-studio/internal/webui"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	audio []byte
}

func (g *fakeGenerator) GenerateSpeech(_ context.Context, req tts.Request) (*tts.Speech, error) {
	if req.Text == "fail" {
		return nil, &tts.ServerError{StatusCode: http.StatusBadRequest, Message: "bad voice"}
	}

	return &tts.Speech{
		Audio:          g.audio,
		ContentType:    "audio/wav",
		GenerationTime: 0.5,
		FileSizeKB:     float64(len(g.audio)) / 1024,
	}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *Studio) {
	t.Helper()

	wavData, err := (&soundgen.Generator{}).Tone(440, 100*time.Millisecond)
	require.NoError(t, err)

	webDir := t.TempDir()
	err = os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html>studio</html>"), 0o644)
	require.NoError(t, err)

	view := webui.NewView()
	audio := audiostore.New()
	controller := &studio.Controller{
		View:        view,
		Credentials: &credential.Store{Slot: storage.NewMemory()},
		Generator:   &fakeGenerator{audio: wavData},
		Audio:       audio,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = controller.Run(ctx)
	}()

	s := &Studio{
		Controller: controller,
		View:       view,
		Audio:      audio,
		WebDir:     webDir,
	}
	srv := httptest.NewServer(NewRouter(s))

	t.Cleanup(func() {
		srv.Close()
		view.Stop()
		cancel()
		<-done
	})

	err = controller.Init()
	require.NoError(t, err)

	return srv, s
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(b)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"healthy"}`, body)
}

func TestVoices(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/api/voices")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var catalog voices.Catalog

	err := json.Unmarshal([]byte(body), &catalog)
	require.NoError(t, err)
	require.Equal(t, voices.All(), catalog)
}

func TestStaticFiles(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "<html>studio</html>", body)
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "tts_studio_websockets_conns_total")
}

func TestAudio(t *testing.T) {
	srv, s := newTestServer(t)

	asset, err := s.Audio.Put([]byte("RIFF fake audio"), "audio/wav")
	require.NoError(t, err)

	for _, tc := range []struct {
		name        string
		path        string
		status      int
		disposition string
	}{
		{name: "play", path: "/audio/" + asset.ID, status: http.StatusOK},
		{name: "download", path: "/audio/" + asset.ID + "?download=1", status: http.StatusOK, disposition: `attachment; filename="speech.wav"`},
		{name: "unknown", path: "/audio/unknown", status: http.StatusNotFound},
	} {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := get(t, srv.URL+tc.path)
			require.Equal(t, tc.status, resp.StatusCode)
			require.Equal(t, tc.disposition, resp.Header.Get("Content-Disposition"))

			if tc.status == http.StatusOK {
				require.Equal(t, "audio/wav", resp.Header.Get("Content-Type"))
				require.Equal(t, "RIFF fake audio", body)
			}
		})
	}

	s.Audio.Release(asset.ID)

	resp, _ := get(t, srv.URL+"/audio/"+asset.ID)
	require.Equal(t, http.StatusNotFound, resp.StatusCode, "released asset")
}

func TestDownloadFileName(t *testing.T) {
	for _, tc := range []struct {
		contentType string
		expected    string
	}{
		{"audio/wav", "speech.wav"},
		{"audio/x-wav", "speech.wav"},
		{"audio/mpeg", "speech.mp3"},
		{"audio/ogg; codecs=opus", "speech.ogg"},
		{"", "speech"},
	} {
		t.Run(tc.contentType, func(t *testing.T) {
			require.Equal(t, tc.expected, DownloadFileName(tc.contentType))
		})
	}
}

func TestAudioDownloadNameFollowsContentType(t *testing.T) {
	srv, s := newTestServer(t)

	asset, err := s.Audio.Put([]byte("ID3 fake audio"), "audio/mpeg")
	require.NoError(t, err)

	resp, _ := get(t, srv.URL+"/audio/"+asset.ID+"?download=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	require.Equal(t, `attachment; filename="speech.mp3"`, resp.Header.Get("Content-Disposition"))
}

type wsClient struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
}

func dial(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.CloseNow()
	})

	return &wsClient{t: t, ctx: ctx, conn: conn}
}

func (c *wsClient) send(a Action) {
	c.t.Helper()

	b, err := json.Marshal(a)
	require.NoError(c.t, err)

	err = c.conn.Write(c.ctx, websocket.MessageText, b)
	require.NoError(c.t, err)
}

// await reads snapshots until one matches the predicate.
func (c *wsClient) await(predicate func(webui.Snapshot) bool) webui.Snapshot {
	c.t.Helper()

	for {
		msgType, data, err := c.conn.Read(c.ctx)
		require.NoError(c.t, err)
		require.Equal(c.t, websocket.MessageText, msgType)

		var s webui.Snapshot

		err = json.Unmarshal(data, &s)
		require.NoError(c.t, err)

		if predicate(s) {
			return s
		}
	}
}

func TestWebSocketStudio(t *testing.T) {
	srv, _ := newTestServer(t)
	client := dial(t, srv)

	initial := client.await(func(webui.Snapshot) bool { return true })
	require.False(t, initial.CredentialConfigured)
	require.Equal(t, voices.DefaultModel, initial.Model)
	require.Equal(t, voices.ForModel(voices.DefaultModel), initial.Voices)
	require.Equal(t, "0 / 10,000 characters", initial.CharCount)
	require.False(t, initial.SubmitEnabled, "submit enabled without credential")

	client.send(Action{Type: ActionSubmit, Text: "hello"})
	s := client.await(func(s webui.Snapshot) bool { return s.Error.Visible })
	require.Equal(t, studio.MsgMissingCredential, s.Error.Message)
	require.Equal(t, "error", s.State)

	client.send(Action{Type: ActionSaveCredential, Credential: "invalid"})
	s = client.await(func(s webui.Snapshot) bool { return s.Error.Message == studio.MsgInvalidCredential })
	require.False(t, s.CredentialConfigured)

	client.send(Action{Type: ActionSaveCredential, Credential: "gsk_test"})
	s = client.await(func(s webui.Snapshot) bool { return s.CredentialConfigured })
	require.True(t, s.SubmitEnabled, "submit enabled with credential")

	client.send(Action{Type: ActionSelectModel, Model: voices.ModelArabic})
	s = client.await(func(s webui.Snapshot) bool { return s.Model == voices.ModelArabic })
	require.Equal(t, "Ahmad-PlayAI", s.Voice)

	client.send(Action{Type: ActionInput, Text: "hello world", Model: voices.ModelArabic, Voice: "Nasser-PlayAI"})
	s = client.await(func(s webui.Snapshot) bool { return s.CharCount == "11 / 10,000 characters" })
	require.Equal(t, "Nasser-PlayAI", s.Voice)

	client.send(Action{Type: ActionSubmit})
	s = client.await(func(s webui.Snapshot) bool { return s.State == "result" && s.Result != nil })
	require.Equal(t, "0.50s", s.Result.GenerationTime)
	require.True(t, s.SubmitEnabled, "submit enabled")
	require.False(t, s.Loading, "loading")

	resp, body := get(t, srv.URL+s.Result.PlayURL)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.HasPrefix(body, "RIFF"), "wav body")

	resp, _ = get(t, srv.URL+s.Result.DownloadURL)
	require.Equal(t, `attachment; filename="speech.wav"`, resp.Header.Get("Content-Disposition"))

	client.send(Action{Type: ActionInput, Text: "fail", Voice: "Broken-PlayAI"})
	client.send(Action{Type: ActionSubmit})
	s = client.await(func(s webui.Snapshot) bool { return s.State == "error" && s.Error.Visible })
	require.Equal(t, "bad voice", s.Error.Message)

	require.Equal(t, "Nasser-PlayAI", s.Voice, "voice outside the model's list ignored")

	client.send(Action{Type: ActionChangeCredential})
	s = client.await(func(s webui.Snapshot) bool { return !s.CredentialConfigured })
	require.False(t, s.SubmitEnabled, "submit enabled without credential")
}

func TestWebSocketIgnoresUnknownAction(t *testing.T) {
	srv, _ := newTestServer(t)
	client := dial(t, srv)

	client.await(func(webui.Snapshot) bool { return true })
	client.send(Action{Type: "unknown"})
	client.send(Action{Type: ActionInput, Text: "still connected"})
	client.await(func(s webui.Snapshot) bool { return s.Text == "still connected" })
}
