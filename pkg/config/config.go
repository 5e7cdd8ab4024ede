package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultServerURL           = "http://localhost:5000"
	DefaultRequestTimeout      = 90 * time.Second
	DefaultErrorDisplayTimeout = 5 * time.Second
)

type Configuration struct {
	ServerURL           string   `json:"serverURL"`
	StateDB             string   `json:"stateDB,omitempty"`
	Model               string   `json:"model,omitempty"`
	Voice               string   `json:"voice,omitempty"`
	OutputDevice        string   `json:"outputDevice,omitempty"`
	RequestTimeout      Duration `json:"requestTimeout,omitempty"`
	ErrorDisplayTimeout Duration `json:"errorDisplayTimeout,omitempty"`
}

// Default returns the configuration used when no config file is present.
func Default() Configuration {
	return Configuration{
		ServerURL:           DefaultServerURL,
		StateDB:             defaultStateDB(),
		RequestTimeout:      Duration(DefaultRequestTimeout),
		ErrorDisplayTimeout: Duration(DefaultErrorDisplayTimeout),
	}
}

func defaultStateDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}

	return filepath.Join(dir, "tts-studio", "state.db")
}

// Duration accepts either a Go duration string ("5s") or a number of seconds.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d *Duration) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(v)

	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any

	err := json.Unmarshal(b, &v)
	if err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(value * float64(time.Second))
		return nil
	case string:
		return d.Set(value)
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}
