package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gordonklaus/portaudio"
	"github.com/mgoltzsche/tts-studio/internal/audio"
	"github.com/mgoltzsche/tts-studio/internal/audiostore"
	"github.com/mgoltzsche/tts-studio/internal/cli"
	"github.com/mgoltzsche/tts-studio/internal/credential"
	"github.com/mgoltzsche/tts-studio/internal/storage"
	"github.com/mgoltzsche/tts-studio/internal/studio"
	"github.com/mgoltzsche/tts-studio/internal/terminal"
	"github.com/mgoltzsche/tts-studio/internal/tts"
	"github.com/mgoltzsche/tts-studio/internal/voices"
	"github.com/mgoltzsche/tts-studio/pkg/config"
)

type options struct {
	APIKey       string
	ChangeAPIKey bool
	Text         string
	TextFile     string
	Output       string
	Play         bool
	ListVoices   bool
	Health       bool
}

func main() {
	configFlag, err := config.NewFlag("/etc/tts-studio/config.yaml")
	cfg := configFlag.Config

	opts := options{Output: "speech.wav"}

	flag.Var(configFlag, "config", "Path to the configuration file")
	flag.StringVar(&cfg.ServerURL, "server-url", cfg.ServerURL, "URL pointing to the speech generation server")
	flag.StringVar(&cfg.StateDB, "state-db", cfg.StateDB, "Path to the SQLite database the API key is stored in")
	flag.StringVar(&cfg.Model, "model", cfg.Model, "name of the TTS model to use")
	flag.StringVar(&cfg.Voice, "voice", cfg.Voice, "name of the voice to use")
	flag.StringVar(&cfg.OutputDevice, "output-device", cfg.OutputDevice, "name or ID or the audio output device")
	flag.Var(&cfg.RequestTimeout, "request-timeout", "Speech generation request timeout")
	flag.StringVar(&opts.APIKey, "api-key", opts.APIKey, "API key to store before generating speech")
	flag.BoolVar(&opts.ChangeAPIKey, "change-api-key", opts.ChangeAPIKey, "forget the stored API key")
	flag.StringVar(&opts.Text, "text", opts.Text, "text to convert into speech")
	flag.StringVar(&opts.TextFile, "text-file", opts.TextFile, "path to a file containing the text to convert into speech")
	flag.StringVar(&opts.Output, "output", opts.Output, "path the generated WAV file is written to")
	flag.BoolVar(&opts.Play, "play", opts.Play, "play the generated speech")
	flag.BoolVar(&opts.ListVoices, "list-voices", opts.ListVoices, "list the voices of every model")
	flag.BoolVar(&opts.Health, "health", opts.Health, "check the speech generation server's health")
	cli.ParseFlagsWithEnvVars(flag.CommandLine, "TTS_STUDIO_")

	if !configFlag.IsSet && err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = run(ctx, *cfg, opts)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Configuration, opts options) error {
	client := &tts.Client{
		URL:    cfg.ServerURL,
		Client: &http.Client{Timeout: cfg.RequestTimeout.Duration()},
	}

	if opts.Health {
		err := client.HealthCheck(ctx)
		if err != nil {
			return err
		}

		fmt.Println("healthy")

		return nil
	}

	if opts.ListVoices {
		return listVoices(ctx, client)
	}

	text := opts.Text
	if opts.TextFile != "" {
		b, err := os.ReadFile(opts.TextFile)
		if err != nil {
			return fmt.Errorf("read text file: %w", err)
		}

		text = string(b)
	}

	db, err := storage.OpenSQLite(ctx, cfg.StateDB)
	if err != nil {
		return err
	}
	defer db.Close()

	view := &terminal.View{
		Out:   os.Stderr,
		Input: studio.Input{Text: text, Model: cfg.Model, Voice: cfg.Voice},
	}
	store := audiostore.New()
	controller := &studio.Controller{
		View:        view,
		Credentials: &credential.Store{Slot: db},
		Generator:   client,
		Audio:       store,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go controller.Run(ctx)

	err = controller.Init()
	if err != nil {
		return err
	}

	if controller.State() == studio.Error {
		return errors.New(controller.LastError())
	}

	if opts.ChangeAPIKey {
		err = controller.ChangeCredential()
		if err != nil {
			return err
		}
	}

	if opts.APIKey != "" {
		err = controller.SaveCredential(opts.APIKey)
		if err != nil {
			return err
		}

		if controller.State() == studio.Error {
			return errors.New(controller.LastError())
		}
	}

	if text == "" && (opts.APIKey != "" || opts.ChangeAPIKey) {
		return nil
	}

	err = controller.Submit()
	if err != nil {
		return err
	}

	if controller.State() == studio.Error {
		return errors.New(controller.LastError())
	}

	select {
	case <-view.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	if controller.State() == studio.Error {
		return errors.New(controller.LastError())
	}

	g := controller.Current()
	if g == nil {
		return fmt.Errorf("no speech generated")
	}

	wavData, _, found := store.Get(g.Asset.ID)
	if !found {
		return fmt.Errorf("generated audio %s not found", g.Asset.ID)
	}

	err = os.WriteFile(opts.Output, wavData, 0o644)
	if err != nil {
		return fmt.Errorf("write speech: %w", err)
	}

	slog.Info(fmt.Sprintf("wrote speech to %s", opts.Output))

	if opts.Play {
		err = portaudio.Initialize()
		if err != nil {
			return fmt.Errorf("initialize audio: %w", err)
		}
		defer portaudio.Terminate()

		output := &audio.Output{Device: cfg.OutputDevice}

		err = output.Play(ctx, wavData)
		if err != nil {
			return fmt.Errorf("play speech: %w", err)
		}
	}

	return nil
}

func listVoices(ctx context.Context, client *tts.Client) error {
	catalog, err := client.ListVoices(ctx)
	if err != nil {
		if !tts.IsTransportError(err) {
			return err
		}

		slog.Warn(fmt.Sprintf("listing the built-in voices since the server is unavailable: %s", err))

		catalog = voices.All()
	}

	printVoices(voices.ModelEnglish, catalog.English)
	printVoices(voices.ModelArabic, catalog.Arabic)

	return nil
}

func printVoices(model string, l []string) {
	fmt.Printf("%s:\n", model)

	for _, v := range l {
		fmt.Printf("  %s\n", v)
	}
}
