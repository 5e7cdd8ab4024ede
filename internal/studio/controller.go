// Package studio implements the request lifecycle of the speech studio:
// credential handling, input validation, speech generation and the
// presentation of results and errors.
package studio

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mgoltzsche/tts-studio/internal/audiostore"
	"github.com/mgoltzsche/tts-studio/internal/tts"
	"github.com/mgoltzsche/tts-studio/internal/voices"
)

const DefaultErrorDisplayTimeout = 5 * time.Second

// Controller drives the studio's state machine.
// All state is owned by the event loop started with Run. The exported
// methods enqueue an action into the loop and return once it was handled.
type Controller struct {
	View        View
	Credentials CredentialStore
	Generator   SpeechGenerator
	Audio       AudioStore
	// Scheduler defaults to time.AfterFunc.
	Scheduler           Scheduler
	ErrorDisplayTimeout time.Duration
	// AudioURL is the path prefix under which audio assets are served.
	AudioURL string

	once    sync.Once
	actions chan func()
	stopped chan struct{}

	ctx          context.Context
	state        State
	lastError    string
	model        string
	voice        string
	result       *Generation
	dismissTimer Timer
	dismissSeq   int64
}

func (c *Controller) init() {
	c.once.Do(func() {
		c.actions = make(chan func())
		c.stopped = make(chan struct{})
	})
}

// Run runs the event loop until the context is cancelled.
// It must be called exactly once.
func (c *Controller) Run(ctx context.Context) error {
	c.init()
	c.ctx = ctx

	defer close(c.stopped)
	defer c.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case action := <-c.actions:
			action()
		}
	}
}

// do runs fn within the event loop and waits for it to complete.
func (c *Controller) do(fn func()) error {
	c.init()

	done := make(chan struct{})

	select {
	case c.actions <- func() {
		defer close(done)
		fn()
	}:
	case <-c.stopped:
		return ErrStopped
	}

	<-done

	return nil
}

// post enqueues fn without waiting for it.
func (c *Controller) post(fn func()) {
	select {
	case c.actions <- fn:
	case <-c.stopped:
	}
}

// Init loads the stored credential and renders the initial form state.
func (c *Controller) Init() error {
	return c.do(func() {
		_, found, err := c.Credentials.Load(c.ctx)
		if err != nil {
			c.fail(err)
		}

		c.View.RenderCredential(found)

		in := c.View.Inputs()
		model := in.Model
		if !voices.IsKnownModel(model) {
			model = voices.DefaultModel
		}

		c.selectModel(model, in.Voice)
		c.View.RenderCharCount(CharCount(in.Text))
	})
}

func (c *Controller) Submit() error {
	return c.do(c.submit)
}

func (c *Controller) SaveCredential(candidate string) error {
	return c.do(func() {
		err := c.Credentials.Save(c.ctx, candidate)
		if err != nil {
			c.fail(err)
			return
		}

		slog.Info("api key saved")
		c.View.RenderCredential(true)
	})
}

// ChangeCredential forgets the stored credential so that the user can enter another one.
func (c *Controller) ChangeCredential() error {
	return c.do(func() {
		err := c.Credentials.Clear(c.ctx)
		if err != nil {
			c.fail(err)
			return
		}

		slog.Info("api key cleared")
		c.View.RenderCredential(false)
	})
}

// SelectModel populates the voice list of the given model and selects its first voice.
func (c *Controller) SelectModel(model string) error {
	return c.do(func() {
		c.selectModel(model, "")
	})
}

func (c *Controller) UpdateText(text string) error {
	return c.do(func() {
		c.View.RenderCharCount(CharCount(text))
	})
}

func (c *Controller) State() State {
	var s State

	err := c.do(func() {
		s = c.state
	})
	if err != nil {
		return c.state
	}

	return s
}

func (c *Controller) LastError() string {
	var msg string

	err := c.do(func() {
		msg = c.lastError
	})
	if err != nil {
		return c.lastError
	}

	return msg
}

// Current returns the live generation result or nil.
func (c *Controller) Current() *Generation {
	var g *Generation

	err := c.do(func() {
		if c.result != nil {
			r := *c.result
			g = &r
		}
	})
	if err != nil {
		return nil
	}

	return g
}

func (c *Controller) selectModel(model, voice string) {
	l := voices.ForModel(model)
	if voice == "" || !slices.Contains(l, voice) {
		voice = l[0]
	}

	c.model = model
	c.voice = voice
	c.View.RenderVoices(model, l, voice)
}

func (c *Controller) submit() {
	if c.state == Loading {
		slog.Debug("ignoring submit since a speech generation request is in flight")
		return
	}

	apiKey, found, err := c.Credentials.Load(c.ctx)
	if err != nil {
		c.fail(err)
		return
	}

	if !found {
		c.fail(ErrMissingCredential)
		return
	}

	in := c.View.Inputs()

	text := strings.TrimSpace(in.Text)
	if text == "" {
		c.fail(ErrMissingText)
		return
	}

	req := tts.Request{
		Text:   text,
		Model:  in.Model,
		Voice:  in.Voice,
		APIKey: apiKey,
	}

	if req.Model == "" {
		req.Model = c.model
	}

	if l := voices.ForModel(req.Model); !slices.Contains(l, req.Voice) {
		switch {
		case slices.Contains(l, c.voice):
			req.Voice = c.voice
		case len(l) > 0:
			req.Voice = l[0]
		}
	}

	c.setState(Loading)
	c.stopDismissTimer()
	c.View.RenderLoading()

	slog.Info(fmt.Sprintf("generating speech for %d characters using model %s and voice %s", len(text), req.Model, req.Voice))

	ctx := c.ctx

	go func() {
		speech, err := c.Generator.GenerateSpeech(ctx, req)
		c.post(func() {
			c.complete(speech, err)
		})
	}()
}

func (c *Controller) complete(speech *tts.Speech, err error) {
	if err != nil {
		slog.Warn(fmt.Sprintf("speech generation failed: %s", err))
		c.setState(Error)
		c.showError(err)
		return
	}

	asset, err := c.Audio.Put(speech.Audio, speech.ContentType)
	if err != nil {
		slog.Warn(err.Error())
		c.setState(Error)
		c.showError(err)
		return
	}

	if c.result != nil {
		c.Audio.Release(c.result.Asset.ID)
	}

	prefix := c.AudioURL
	if prefix == "" {
		prefix = "/audio/"
	}

	url := strings.TrimSuffix(prefix, "/") + "/" + asset.ID
	g := Generation{
		GenerationTime: fmt.Sprintf("%.2fs", speech.GenerationTime),
		FileSize:       fmt.Sprintf("%.1f KB", speech.FileSizeKB),
		Duration:       asset.Duration,
		PlayURL:        url,
		DownloadURL:    url + "?download=1",
		Asset:          asset,
	}

	c.result = &g
	c.setState(Result)

	slog.Info(fmt.Sprintf("generated speech in %s, size: %s", g.GenerationTime, g.FileSize))

	c.View.RenderResult(g)
}

// fail enters the Error state and shows the error.
// While a request is in flight the state is left to the request's completion.
func (c *Controller) fail(err error) {
	if c.state != Loading {
		c.setState(Error)
	}

	c.showError(err)
}

func (c *Controller) setState(s State) {
	c.state = s
	c.View.RenderState(s)
}

func (c *Controller) showError(err error) {
	c.lastError = Message(err)
	c.View.RenderError(c.lastError)
	c.scheduleErrorDismissal()
}

// scheduleErrorDismissal hides the error after the display timeout.
// It replaces any previously scheduled dismissal.
func (c *Controller) scheduleErrorDismissal() {
	c.stopDismissTimer()

	timeout := c.ErrorDisplayTimeout
	if timeout <= 0 {
		timeout = DefaultErrorDisplayTimeout
	}

	scheduler := c.Scheduler
	if scheduler == nil {
		scheduler = realScheduler{}
	}

	seq := c.dismissSeq

	c.dismissTimer = scheduler.AfterFunc(timeout, func() {
		c.post(func() {
			if seq == c.dismissSeq {
				c.dismissTimer = nil
				c.View.HideError()
			}
		})
	})
}

func (c *Controller) stopDismissTimer() {
	c.dismissSeq++

	if c.dismissTimer != nil {
		c.dismissTimer.Stop()
		c.dismissTimer = nil
	}
}

func (c *Controller) shutdown() {
	c.stopDismissTimer()

	if c.result != nil {
		c.Audio.Release(c.result.Asset.ID)
		c.result = nil
	}
}

var _ AudioStore = &audiostore.Store{}
