package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mgoltzsche/tts-studio/internal/metrics"
	"github.com/mgoltzsche/tts-studio/internal/voices"
)

const (
	HeaderGenerationTime = "X-Generation-Time"
	HeaderFileSize       = "X-File-Size"
)

type Client struct {
	URL    string
	Client *http.Client
}

func (c *Client) GenerateSpeech(ctx context.Context, r Request) (*Speech, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal speech generation params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/generate-speech"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build speech generation request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	start := time.Now()

	defer func() {
		metrics.SpeechRequestTime.Observe(time.Since(start).Seconds())
	}()

	resp, err := c.httpClient().Do(req)
	if err != nil {
		metrics.SpeechErrors.WithLabelValues("transport").Inc()
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.SpeechErrors.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		return nil, parseErrorResponse(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.SpeechErrors.WithLabelValues("transport").Inc()
		return nil, &TransportError{Err: fmt.Errorf("read speech generation response body: %w", err)}
	}

	elapsed := time.Since(start)

	return &Speech{
		Audio:          audio,
		ContentType:    resp.Header.Get("Content-Type"),
		GenerationTime: headerFloat(resp.Header, HeaderGenerationTime, elapsed.Seconds()),
		FileSizeKB:     headerFloat(resp.Header, HeaderFileSize, float64(len(audio))/1024),
	}, nil
}

// HealthCheck verifies that the speech generation server is up.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/health"), http.NoBody)
	if err != nil {
		return fmt.Errorf("build health check request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("health check: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health check: server responded with %d", resp.StatusCode)
	}

	return nil
}

// ListVoices returns the voice catalog the server advertises.
func (c *Client) ListVoices(ctx context.Context) (voices.Catalog, error) {
	var catalog voices.Catalog

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/api/voices"), http.NoBody)
	if err != nil {
		return catalog, fmt.Errorf("build voices request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return catalog, &TransportError{Err: fmt.Errorf("list voices: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return catalog, fmt.Errorf("list voices: server responded with %d", resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(&catalog)
	if err != nil {
		return catalog, fmt.Errorf("decode voices response: %w", err)
	}

	return catalog, nil
}

func (c *Client) url(path string) string {
	return strings.TrimSuffix(c.URL, "/") + path
}

func (c *Client) httpClient() *http.Client {
	if c.Client == nil {
		return http.DefaultClient
	}

	return c.Client
}

// parseErrorResponse extracts the error field of a JSON error body.
// Any other body results in the generic fallback message.
func parseErrorResponse(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}

	msg := FallbackErrorMessage

	b, err := io.ReadAll(resp.Body)
	if err == nil && json.Unmarshal(b, &body) == nil && strings.TrimSpace(body.Error) != "" {
		msg = body.Error
	}

	return &ServerError{StatusCode: resp.StatusCode, Message: msg}
}

func headerFloat(h http.Header, name string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(h.Get(name)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}

	return v
}
