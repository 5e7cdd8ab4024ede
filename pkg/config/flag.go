package config

import (
	"errors"
	"io/fs"
)

// Flag is a flag.Value that loads the configuration file it is set to.
type Flag struct {
	File   string
	Config *Configuration
	IsSet  bool
}

// NewFlag loads the default configuration file into a new Flag.
// A missing default file results in the default configuration without an error.
func NewFlag(defaultFile string) (*Flag, error) {
	cfg, err := FromFile(defaultFile)
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
	}

	return &Flag{File: defaultFile, Config: &cfg}, err
}

// Set replaces the configuration with the one loaded from path.
// Flags parsed before the -config flag are overwritten by the file's values.
func (f *Flag) Set(path string) error {
	cfg, err := FromFile(path)
	if err != nil {
		return err
	}

	f.File = path
	*f.Config = cfg
	f.IsSet = true

	return nil
}

func (f *Flag) String() string {
	if f == nil {
		return ""
	}

	return f.File
}
