package studio

import (
	"errors"
	"unicode/utf8"

	"github.com/mgoltzsche/tts-studio/internal/credential"
	"github.com/mgoltzsche/tts-studio/internal/tts"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MaxTextLength is shown next to the character count. Longer texts are not rejected.
const MaxTextLength = 10000

const (
	MsgMissingCredential = "Please enter your API key first"
	MsgMissingText       = "Please enter some text"
	MsgEmptyCredential   = "Please enter an API key"
	MsgInvalidCredential = "Invalid API key format."
)

var (
	ErrMissingCredential = errors.New("missing api key")
	ErrMissingText       = errors.New("missing text")
	ErrStopped           = errors.New("studio controller stopped")
)

var printer = message.NewPrinter(language.English)

// CharCount returns the live character count readout for the given text.
func CharCount(text string) string {
	return printer.Sprintf("%d / %d characters", utf8.RuneCountInString(text), MaxTextLength)
}

// Message returns the user-visible message for an error.
func Message(err error) string {
	var serverErr *tts.ServerError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return MsgMissingCredential
	case errors.Is(err, ErrMissingText):
		return MsgMissingText
	case errors.Is(err, credential.ErrEmptyInput):
		return MsgEmptyCredential
	case errors.Is(err, credential.ErrInvalidFormat):
		return MsgInvalidCredential
	case errors.As(err, &serverErr):
		return serverErr.Message
	}

	if msg := err.Error(); msg != "" {
		return msg
	}

	return tts.FallbackErrorMessage
}
