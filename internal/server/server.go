// Package server exposes the web studio over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mgoltzsche/tts-studio/internal/audiostore"
	"github.com/mgoltzsche/tts-studio/internal/metrics"
	"github.com/mgoltzsche/tts-studio/internal/studio"
	"github.com/mgoltzsche/tts-studio/internal/voices"
	"github.com/mgoltzsche/tts-studio/internal/webui"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// downloadBaseName is the file name, without extension, suggested to browsers when downloading audio.
const downloadBaseName = "speech"

var audioExtensions = map[string]string{
	"audio/wav":   ".wav",
	"audio/wave":  ".wav",
	"audio/x-wav": ".wav",
	"audio/mpeg":  ".mp3",
	"audio/ogg":   ".ogg",
	"audio/flac":  ".flac",
}

// DownloadFileName returns the download file name for audio of the given content type.
func DownloadFileName(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return downloadBaseName
	}

	if ext, ok := audioExtensions[mediaType]; ok {
		return downloadBaseName + ext
	}

	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return downloadBaseName + exts[0]
	}

	return downloadBaseName
}

// Studio holds the components the routes operate on.
type Studio struct {
	Controller *studio.Controller
	View       *webui.View
	Audio      *audiostore.Store
	// WebDir is served as static content. Nothing is served when empty.
	WebDir string
}

// Action is a JSON message sent by the browser.
type Action struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	Model      string `json:"model,omitempty"`
	Voice      string `json:"voice,omitempty"`
	Credential string `json:"credential,omitempty"`
}

const (
	ActionInput            = "input"
	ActionSelectModel      = "selectModel"
	ActionSubmit           = "submit"
	ActionSaveCredential   = "saveCredential"
	ActionChangeCredential = "changeCredential"
)

func NewRouter(s *Studio) *chi.Mux {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	AddRoutes(router, s)

	return router
}

func AddRoutes(router chi.Router, s *Studio) {
	router.Get("/ws", s.handleWebSocket)
	router.Get("/audio/{id}", s.handleAudio)
	router.Get("/api/voices", handleVoices)
	router.Get("/healthz", handleHealth)
	router.Handle("/metrics", promhttp.Handler())

	if s.WebDir != "" {
		router.Handle("/*", http.FileServer(http.Dir(s.WebDir)))
	}
}

func (s *Studio) handleAudio(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	data, asset, found := s.Audio.Get(id)
	if !found {
		http.NotFound(w, req)
		return
	}

	name := DownloadFileName(asset.ContentType)
	h := w.Header()
	h.Set("Content-Type", asset.ContentType)
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if req.URL.Query().Get("download") != "" {
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}

	http.ServeContent(w, req, name, time.Time{}, bytes.NewReader(data))
}

func handleVoices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, voices.All())
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn(fmt.Sprintf("write response: %s", err))
	}
}

func (s *Studio) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := websocket.Accept(w, req, nil)
	if err != nil {
		slog.Warn(fmt.Sprintf("accept websocket connection: %s", err))
		return
	}
	defer conn.CloseNow()

	metrics.WebSocketConnections.Inc()
	defer metrics.WebSocketConnections.Dec()

	slog.Debug(fmt.Sprintf("websocket client %s connected", middleware.GetReqID(req.Context())))

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	go func() {
		defer cancel()

		err := s.readActions(ctx, conn)
		if err != nil {
			slog.Warn(fmt.Sprintf("read websocket actions: %s", err))
		}
	}()

	err = s.streamSnapshots(ctx, conn)
	if err != nil && ctx.Err() == nil {
		slog.Warn(fmt.Sprintf("stream snapshots: %s", err))
		return
	}

	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Studio) streamSnapshots(ctx context.Context, conn *websocket.Conn) error {
	sub := s.View.Subscribe(ctx)
	defer sub.Stop()

	encoder := json.NewEncoder(&websocketWriter{
		Ctx:         ctx,
		Websocket:   conn,
		MessageType: websocket.MessageText,
	})

	for snapshot := range sub.ResultChan() {
		err := encoder.Encode(snapshot)
		if err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}

	return nil
}

func (s *Studio) readActions(ctx context.Context, conn *websocket.Conn) error {
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("read websocket message: %w", err)
		}

		if msgType != websocket.MessageText {
			return fmt.Errorf("invalid message type %s received", msgType)
		}

		var a Action

		err = json.Unmarshal(data, &a)
		if err != nil {
			return fmt.Errorf("decode action: %w", err)
		}

		err = s.dispatch(a)
		if err != nil {
			if errors.Is(err, studio.ErrStopped) {
				return err
			}

			slog.Warn(fmt.Sprintf("handle %s action: %s", a.Type, err))
		}
	}
}

func (s *Studio) dispatch(a Action) error {
	slog.Debug(fmt.Sprintf("received %s action", a.Type))

	switch a.Type {
	case ActionInput:
		s.View.SetInput(studio.Input{Text: a.Text, Model: a.Model, Voice: a.Voice})
		return s.Controller.UpdateText(a.Text)
	case ActionSelectModel:
		return s.Controller.SelectModel(a.Model)
	case ActionSubmit:
		if a.Text != "" || a.Model != "" || a.Voice != "" {
			s.View.SetInput(studio.Input{Text: a.Text, Model: a.Model, Voice: a.Voice})
		}
		return s.Controller.Submit()
	case ActionSaveCredential:
		return s.Controller.SaveCredential(a.Credential)
	case ActionChangeCredential:
		return s.Controller.ChangeCredential()
	}

	return fmt.Errorf("unsupported action type %q", a.Type)
}
