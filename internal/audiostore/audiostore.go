// Package audiostore keeps generated audio in memory so that it can be played
// and downloaded until it is released.
package audiostore

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-audio/wav"
	"github.com/google/uuid"
)

type Asset struct {
	ID          string        `json:"id"`
	ContentType string        `json:"contentType"`
	Size        int           `json:"size"`
	Duration    time.Duration `json:"duration"`
}

type entry struct {
	asset Asset
	data  []byte
}

type Store struct {
	mutex   sync.RWMutex
	entries map[string]entry
}

func New() *Store {
	return &Store{entries: map[string]entry{}}
}

func (s *Store) Put(data []byte, contentType string) (Asset, error) {
	if len(data) == 0 {
		return Asset{}, fmt.Errorf("store audio: empty audio data")
	}

	if contentType == "" {
		contentType = "audio/wav"
	}

	asset := Asset{
		ID:          uuid.NewString(),
		ContentType: contentType,
		Size:        len(data),
	}

	d, err := wavDuration(data)
	if err != nil {
		slog.Debug(fmt.Sprintf("cannot determine audio duration of %s: %s", asset.ID, err))
	}

	asset.Duration = d

	s.mutex.Lock()
	s.entries[asset.ID] = entry{asset: asset, data: data}
	s.mutex.Unlock()

	return asset, nil
}

func (s *Store) Get(id string) ([]byte, Asset, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, ok := s.entries[id]

	return e.data, e.asset, ok
}

// Release frees the audio data. Releasing an unknown id is a no-op.
func (s *Store) Release(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.entries, id)
}

func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.entries)
}

func wavDuration(data []byte) (time.Duration, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return 0, fmt.Errorf("not a wave file")
	}

	decoder.ReadInfo()
	if err := decoder.Err(); err != nil {
		return 0, fmt.Errorf("read wave file headers: %w", err)
	}

	d, err := decoder.Duration()
	if err != nil {
		return 0, fmt.Errorf("get audio duration from wave headers: %w", err)
	}

	return d, nil
}
