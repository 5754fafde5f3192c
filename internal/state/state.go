// Package state owns the persisted registry record: the map of self-managed
// installed versions and the active pointer. It is the only writer and reader
// of config.json.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pyvm/internal/paths"
)

var (
	// ErrConfigCorrupt marks a state file that exists but cannot be decoded.
	ErrConfigCorrupt = errors.New("state file corrupt")
	// ErrPersistence marks a failure to durably write the state file.
	ErrPersistence = errors.New("persist state")
)

// State is the durable record serialized to config.json.
type State struct {
	Installed map[string]string `json:"installed_versions"`
	Current   *string           `json:"current"`
}

// Empty returns a fresh first-run state.
func Empty() State {
	return State{Installed: map[string]string{}}
}

// CurrentID returns the active pointer, or "" when unset.
func (s State) CurrentID() string {
	if s.Current == nil {
		return ""
	}
	return *s.Current
}

// SetCurrent points the active pointer at id.
func (s *State) SetCurrent(id string) {
	s.Current = &id
}

// ClearCurrent unsets the active pointer.
func (s *State) ClearCurrent() {
	s.Current = nil
}

func (s *State) normalize() {
	if s.Installed == nil {
		s.Installed = map[string]string{}
	}
}

// Store is the persistence contract engines depend on. Implementations must
// make Save all-or-nothing: a completed write is always a valid document.
type Store interface {
	Load() (State, error)
	Save(State) error
}

// FileStore persists State as JSON under the managed root. Construction
// ensures the root and versions directories exist.
type FileStore struct {
	path paths.Paths
}

// NewFileStore builds a FileStore and performs first-run directory setup.
func NewFileStore(p paths.Paths) (*FileStore, error) {
	if err := p.EnsureBase(); err != nil {
		return nil, err
	}
	return &FileStore{path: p}, nil
}

// Load reads the state file. A missing file is first-run initialization and
// yields an empty state, not an error.
func (f *FileStore) Load() (State, error) {
	contents, err := os.ReadFile(f.path.StateFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Empty(), nil
		}
		return State{}, fmt.Errorf("read state file: %w", err)
	}

	var st State
	if err := json.Unmarshal(contents, &st); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrConfigCorrupt, err)
	}
	st.normalize()
	return st, nil
}

// LoadWithRetry loads the state, retrying once after a short delay on
// failure. Read-only callers use this instead of taking the lock.
func (f *FileStore) LoadWithRetry() (State, error) {
	st, err := f.Load()
	if err == nil {
		return st, nil
	}
	time.Sleep(150 * time.Millisecond)
	st, retryErr := f.Load()
	if retryErr != nil {
		return State{}, fmt.Errorf("state unavailable after retry: %w", retryErr)
	}
	return st, nil
}

// Save writes the state atomically: the document is staged in a temp file in
// the same directory and renamed over the previous copy, so an interrupted
// write never truncates the durable file.
func (f *FileStore) Save(st State) error {
	st.normalize()

	buf, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPersistence, err)
	}

	dir := filepath.Dir(f.path.StateFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: prepare state directory: %v", ErrPersistence, err)
	}

	tmp, err := os.CreateTemp(dir, "config-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp state: %v", ErrPersistence, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write temp state: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp state: %v", ErrPersistence, err)
	}

	if err := os.Rename(tmp.Name(), f.path.StateFile); err != nil {
		return fmt.Errorf("%w: replace state file: %v", ErrPersistence, err)
	}
	return nil
}
