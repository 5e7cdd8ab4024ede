package studio

import (
	"context"
	"time"

	"github.com/mgoltzsche/tts-studio/internal/audiostore"
	"github.com/mgoltzsche/tts-studio/internal/tts"
)

type State int

const (
	Idle State = iota
	Loading
	Result
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Result:
		return "result"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Input is what the user entered into the form.
type Input struct {
	Text  string
	Model string
	Voice string
}

// Generation is the presentable result of a successful speech generation.
type Generation struct {
	GenerationTime string
	FileSize       string
	Duration       time.Duration
	PlayURL        string
	DownloadURL    string
	Asset          audiostore.Asset
}

// View is the presentation layer the controller reads inputs from and renders to.
// All methods are called from the controller's event loop.
// RenderState is called on every state transition before the state's content is rendered.
type View interface {
	Inputs() Input
	RenderState(State)
	RenderCredential(configured bool)
	RenderVoices(model string, voices []string, selected string)
	RenderCharCount(readout string)
	RenderLoading()
	RenderResult(Generation)
	RenderError(message string)
	HideError()
}

type CredentialStore interface {
	Load(ctx context.Context) (string, bool, error)
	Save(ctx context.Context, candidate string) error
	Clear(ctx context.Context) error
}

type SpeechGenerator interface {
	GenerateSpeech(ctx context.Context, req tts.Request) (*tts.Speech, error)
}

type AudioStore interface {
	Put(data []byte, contentType string) (audiostore.Asset, error)
	Release(id string)
}

type Timer interface {
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
