// Package credential validates and persists the API key used to authenticate
// speech generation requests.
package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mgoltzsche/tts-studio/internal/storage"
)

const (
	// StorageKey must not change since previously saved keys are stored under it.
	StorageKey = "groq_api_key"
	Prefix     = "gsk_"
)

var (
	ErrEmptyInput    = errors.New("empty api key")
	ErrInvalidFormat = fmt.Errorf("api key must start with %q", Prefix)
)

type Store struct {
	Slot storage.Slot
}

// Load returns the persisted credential as is, without validating it.
func (s *Store) Load(ctx context.Context) (string, bool, error) {
	v, found, err := s.Slot.Get(ctx, StorageKey)
	if err != nil {
		return "", false, fmt.Errorf("load api key: %w", err)
	}

	return v, found && v != "", nil
}

func (s *Store) Save(ctx context.Context, candidate string) error {
	key, err := Validate(candidate)
	if err != nil {
		return err
	}

	err = s.Slot.Set(ctx, StorageKey, key)
	if err != nil {
		return fmt.Errorf("save api key: %w", err)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	err := s.Slot.Delete(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("clear api key: %w", err)
	}

	return nil
}

// Validate returns the trimmed candidate or an error if it cannot be stored.
func Validate(candidate string) (string, error) {
	key := strings.TrimSpace(candidate)
	if key == "" {
		return "", ErrEmptyInput
	}

	if !strings.HasPrefix(key, Prefix) {
		return "", ErrInvalidFormat
	}

	return key, nil
}
