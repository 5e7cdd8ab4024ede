// Package terminal renders the studio's state as plain text lines.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mgoltzsche/tts-studio/internal/studio"
)

var _ studio.View = &View{}

// View is a studio.View that reads its inputs from the command line.
type View struct {
	Out   io.Writer
	Input studio.Input

	mutex    sync.Mutex
	once     sync.Once
	done     chan struct{}
	inFlight bool
	result   *studio.Generation
	message  string
}

func (v *View) init() {
	v.once.Do(func() {
		v.done = make(chan struct{})
	})
}

// Done is closed once a speech generation request completed.
func (v *View) Done() <-chan struct{} {
	v.init()
	return v.done
}

// Result returns the rendered generation result or nil.
func (v *View) Result() *studio.Generation {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	return v.result
}

// Error returns the last rendered error message.
func (v *View) Error() string {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	return v.message
}

func (v *View) Inputs() studio.Input {
	return v.Input
}

func (v *View) RenderState(s studio.State) {
	v.init()
	v.mutex.Lock()
	defer v.mutex.Unlock()

	switch s {
	case studio.Loading:
		v.inFlight = true
	case studio.Result, studio.Error:
		if v.inFlight {
			v.inFlight = false
			close(v.done)
		}
	}
}

func (v *View) RenderCredential(configured bool) {
	if configured {
		v.printf("API key: configured")
		return
	}

	v.printf("API key: not configured")
}

func (v *View) RenderVoices(model string, voices []string, selected string) {
	v.printf("Model: %s, voices: %s", model, strings.Join(voices, ", "))
}

func (v *View) RenderCharCount(readout string) {
	v.printf("Text: %s", readout)
}

func (v *View) RenderLoading() {
	v.printf("Generating speech...")
}

func (v *View) RenderResult(g studio.Generation) {
	v.mutex.Lock()
	v.result = &g
	v.mutex.Unlock()

	if g.Duration > 0 {
		v.printf("Generated speech in %s, size: %s, duration: %s", g.GenerationTime, g.FileSize, g.Duration.Round(100*time.Millisecond))
		return
	}

	v.printf("Generated speech in %s, size: %s", g.GenerationTime, g.FileSize)
}

func (v *View) RenderError(message string) {
	v.mutex.Lock()
	v.message = message
	v.mutex.Unlock()

	v.printf("Error: %s", message)
}

func (v *View) HideError() {}

func (v *View) printf(format string, args ...any) {
	if v.Out == nil {
		return
	}

	fmt.Fprintf(v.Out, format+"\n", args...)
}
