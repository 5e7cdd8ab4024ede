// Package webui renders the studio's state into snapshots that are streamed to browsers.
package webui

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/mgoltzsche/tts-studio/internal/pubsub"
	"github.com/mgoltzsche/tts-studio/internal/studio"
	"github.com/mgoltzsche/tts-studio/internal/voices"
)

var _ studio.View = &View{}

// Snapshot is the complete state of the web page.
type Snapshot struct {
	CredentialConfigured bool        `json:"credentialConfigured"`
	SubmitEnabled        bool        `json:"submitEnabled"`
	Loading              bool        `json:"loading"`
	Text                 string      `json:"text"`
	CharCount            string      `json:"charCount"`
	Model                string      `json:"model"`
	Models               []string    `json:"models"`
	Voices               []string    `json:"voices"`
	Voice                string      `json:"voice"`
	State                string      `json:"state"`
	Error                ErrorBanner `json:"error"`
	Result               *Result     `json:"result,omitempty"`
}

type ErrorBanner struct {
	Visible bool   `json:"visible"`
	Message string `json:"message,omitempty"`
}

type Result struct {
	PlayURL        string `json:"playURL"`
	DownloadURL    string `json:"downloadURL"`
	GenerationTime string `json:"generationTime"`
	FileSize       string `json:"fileSize"`
	Duration       string `json:"duration,omitempty"`
}

// View is a studio.View that publishes a Snapshot on every change.
type View struct {
	mutex    sync.Mutex
	snapshot Snapshot
	pubsub   *pubsub.PubSub[Snapshot]
}

func NewView() *View {
	return &View{
		snapshot: Snapshot{
			Model:  voices.DefaultModel,
			Models: voices.Models(),
			State:  studio.Idle.String(),
		},
		pubsub: pubsub.NewReplaying[Snapshot](),
	}
}

// Subscribe streams the current snapshot followed by every change.
func (v *View) Subscribe(ctx context.Context) pubsub.Subscription[Snapshot] {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	if _, ok := v.pubsub.Latest(); !ok {
		v.pubsub.Publish(v.copySnapshot())
	}

	return v.pubsub.Subscribe(ctx)
}

func (v *View) Snapshot() Snapshot {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	return v.copySnapshot()
}

func (v *View) Stop() {
	v.pubsub.Stop()
}

// SetInput records what the user entered into the browser form.
// A voice that is not in the rendered voice list is ignored.
func (v *View) SetInput(in studio.Input) {
	v.update(func(s *Snapshot) {
		s.Text = in.Text
		if in.Model != "" {
			s.Model = in.Model
		}
		if in.Voice != "" && (len(s.Voices) == 0 || slices.Contains(s.Voices, in.Voice)) {
			s.Voice = in.Voice
		}
	})
}

func (v *View) Inputs() studio.Input {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	return studio.Input{
		Text:  v.snapshot.Text,
		Model: v.snapshot.Model,
		Voice: v.snapshot.Voice,
	}
}

func (v *View) RenderState(state studio.State) {
	v.update(func(s *Snapshot) {
		s.State = state.String()
		s.Loading = state == studio.Loading
		s.SubmitEnabled = s.CredentialConfigured && !s.Loading
	})
}

func (v *View) RenderCredential(configured bool) {
	v.update(func(s *Snapshot) {
		s.CredentialConfigured = configured
		s.SubmitEnabled = configured && !s.Loading
	})
}

func (v *View) RenderVoices(model string, voices []string, selected string) {
	v.update(func(s *Snapshot) {
		s.Model = model
		s.Voices = voices
		s.Voice = selected
	})
}

func (v *View) RenderCharCount(readout string) {
	v.update(func(s *Snapshot) {
		s.CharCount = readout
	})
}

func (v *View) RenderLoading() {
	v.update(func(s *Snapshot) {
		s.Error = ErrorBanner{}
		s.Result = nil
	})
}

func (v *View) RenderResult(g studio.Generation) {
	r := &Result{
		PlayURL:        g.PlayURL,
		DownloadURL:    g.DownloadURL,
		GenerationTime: g.GenerationTime,
		FileSize:       g.FileSize,
	}

	if g.Duration > 0 {
		r.Duration = g.Duration.Round(100 * time.Millisecond).String()
	}

	v.update(func(s *Snapshot) {
		s.Result = r
	})
}

func (v *View) RenderError(message string) {
	v.update(func(s *Snapshot) {
		if !s.Loading {
			s.Result = nil
		}

		s.Error = ErrorBanner{Visible: true, Message: message}
	})
}

func (v *View) HideError() {
	v.update(func(s *Snapshot) {
		s.Error.Visible = false
	})
}

func (v *View) update(fn func(s *Snapshot)) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	fn(&v.snapshot)
	v.pubsub.Publish(v.copySnapshot())
}

func (v *View) copySnapshot() Snapshot {
	s := v.snapshot
	s.Models = append([]string(nil), s.Models...)
	s.Voices = append([]string(nil), s.Voices...)

	if s.Result != nil {
		r := *s.Result
		s.Result = &r
	}

	return s
}
