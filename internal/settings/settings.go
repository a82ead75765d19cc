// Package settings persists the user's daemon settings as YAML and watches
// the settings file for external edits.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/randomizedcoder/go-fluxgui/internal/process"
)

// File and directory names under the user config directory.
const (
	AppDirName       = "go-fluxgui"
	SettingsFileName = "settings.yaml"
)

// Settings is the persisted user state.
type Settings struct {
	Daemon     string `yaml:"daemon"`
	Latitude   string `yaml:"latitude"`
	Longitude  string `yaml:"longitude"`
	Zipcode    string `yaml:"zipcode"`
	Color      string `yaml:"color"`
	PauseColor string `yaml:"pause_color"`
	Autostart  bool   `yaml:"autostart"`
}

// Default returns the settings used when no file exists yet.
func Default() *Settings {
	return &Settings{
		Daemon:     "redshift",
		Color:      process.DefaultColor,
		PauseColor: process.NeutralColor,
	}
}

// Location returns the startup location held in s.
func (s Settings) Location() process.Location {
	return process.Location{
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Zipcode:   s.Zipcode,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/go-fluxgui/settings.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppDirName, SettingsFileName), nil
}

// Load reads settings from path. A missing file yields Default().
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML from %s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path atomically, creating the parent directory.
func Save(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+SettingsFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// Store holds the current settings and writes every change to disk.
// It is safe for concurrent use.
type Store struct {
	path string

	mu      sync.Mutex
	current Settings
}

// Open loads the store from path.
func Open(path string) (*Store, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, current: *s}, nil
}

// NewMemoryStore returns a store that is never written to disk.
func NewMemoryStore(s Settings) *Store {
	return &Store{current: s}
}

// Path returns the settings file path, or "" for a memory store.
func (st *Store) Path() string {
	return st.path
}

// Get returns a copy of the current settings.
func (st *Store) Get() Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current
}

// Update applies fn to the settings and persists the result.
// The in-memory value is only replaced when the write succeeds.
func (st *Store) Update(fn func(s *Settings)) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.current
	fn(&next)
	if next == st.current {
		return nil
	}

	if st.path != "" {
		if err := Save(st.path, &next); err != nil {
			return err
		}
	}
	st.current = next
	return nil
}

// Replace sets the in-memory settings without writing them, for values that
// were just read from disk.
func (st *Store) Replace(s Settings) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current = s
}
