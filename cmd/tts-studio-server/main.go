package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mgoltzsche/tts-studio/internal/audiostore"
	"github.com/mgoltzsche/tts-studio/internal/cli"
	"github.com/mgoltzsche/tts-studio/internal/credential"
	"github.com/mgoltzsche/tts-studio/internal/server"
	"github.com/mgoltzsche/tts-studio/internal/storage"
	"github.com/mgoltzsche/tts-studio/internal/studio"
	"github.com/mgoltzsche/tts-studio/internal/tlsutils"
	"github.com/mgoltzsche/tts-studio/internal/tts"
	"github.com/mgoltzsche/tts-studio/internal/webui"
	"github.com/mgoltzsche/tts-studio/pkg/config"
)

func main() {
	configFlag, err := config.NewFlag("/etc/tts-studio/config.yaml")
	cfg := configFlag.Config

	listenAddr := ":8443"
	webDir := "/var/lib/tts-studio/ui"
	tlsEnabled := false
	tlsCert := ""
	tlsKey := ""

	flag.Var(configFlag, "config", "Path to the configuration file")
	flag.StringVar(&cfg.ServerURL, "server-url", cfg.ServerURL, "URL pointing to the speech generation server")
	flag.StringVar(&cfg.StateDB, "state-db", cfg.StateDB, "Path to the SQLite database the API key is stored in")
	flag.Var(&cfg.RequestTimeout, "request-timeout", "Speech generation request timeout")
	flag.Var(&cfg.ErrorDisplayTimeout, "error-display-timeout", "Duration an error message is shown")
	flag.StringVar(&listenAddr, "listen", listenAddr, "Address the server should listen on")
	flag.StringVar(&webDir, "web-dir", webDir, "Path to the web UI directory")
	flag.BoolVar(&tlsEnabled, "tls", tlsEnabled, "Serve securely via HTTPS/TLS")
	flag.StringVar(&tlsKey, "tls-key", tlsKey, "Path to the TLS key file")
	flag.StringVar(&tlsCert, "tls-cert", tlsCert, "Path to the TLS certificate file")
	cli.ParseFlagsWithEnvVars(flag.CommandLine, "TTS_STUDIO_")

	if !configFlag.IsSet && err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = runServer(ctx, *cfg, listenAddr, webDir, tlsEnabled, tlsCert, tlsKey)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg config.Configuration, listenAddr, webDir string, tlsEnabled bool, tlsCert, tlsKey string) error {
	db, err := storage.OpenSQLite(ctx, cfg.StateDB)
	if err != nil {
		return err
	}
	defer db.Close()

	view := webui.NewView()
	defer view.Stop()

	view.SetInput(studio.Input{Model: cfg.Model, Voice: cfg.Voice})

	audio := audiostore.New()
	controller := &studio.Controller{
		View:        view,
		Credentials: &credential.Store{Slot: db},
		Generator: &tts.Client{
			URL:    cfg.ServerURL,
			Client: &http.Client{Timeout: cfg.RequestTimeout.Duration()},
		},
		Audio:               audio,
		ErrorDisplayTimeout: cfg.ErrorDisplayTimeout.Duration(),
	}

	controllerDone := make(chan error, 1)

	go func() {
		controllerDone <- controller.Run(ctx)
	}()

	err = controller.Init()
	if err != nil {
		return fmt.Errorf("init studio: %w", err)
	}

	srv := &http.Server{
		Addr:        listenAddr,
		BaseContext: func(net.Listener) context.Context { return ctx },
		Handler: server.NewRouter(&server.Studio{
			Controller: controller,
			View:       view,
			Audio:      audio,
			WebDir:     webDir,
		}),
	}

	go func() {
		<-ctx.Done()
		slog.Info("terminating")
		srv.Shutdown(context.Background())
	}()

	slog.Info(fmt.Sprintf("using speech generation server %s", cfg.ServerURL))

	if tlsEnabled {
		if tlsCert == "" && tlsKey == "" {
			slog.Info("generating self-signed TLS certificate")

			cert, err := tlsutils.SelfSignedCertificate()
			if err != nil {
				return fmt.Errorf("generating tls certificate: %w", err)
			}

			srv.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
		}

		slog.Info(fmt.Sprintf("listening on %s", srv.Addr))

		err = srv.ListenAndServeTLS(tlsCert, tlsKey)
	} else {
		slog.Info(fmt.Sprintf("listening on %s", srv.Addr))

		err = srv.ListenAndServe()
	}
	if err != http.ErrServerClosed {
		return err
	}

	return <-controllerDone
}
