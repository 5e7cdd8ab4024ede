package tts

import (
	"errors"
	"fmt"
	"net/http"
)

const FallbackErrorMessage = "Failed to generate speech"

// Request is the JSON payload of a speech generation call.
type Request struct {
	Text   string `json:"text"`
	Model  string `json:"model"`
	Voice  string `json:"voice"`
	APIKey string `json:"api_key"`
}

// Speech is the audio returned by a successful generation call.
type Speech struct {
	Audio       []byte
	ContentType string
	// GenerationTime is the server-side generation duration in seconds.
	GenerationTime float64
	// FileSizeKB is the audio size in kilobytes.
	FileSizeKB float64
}

// ServerError is returned when the server responds with a non-2xx status.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

func (e *ServerError) Status() string {
	return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// TransportError is returned when the request could not be completed.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is a *TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
